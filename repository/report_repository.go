package repository

import (
	"database/sql"
	"fmt"

	"mzview/db"
	"mzview/model"
)

// ReportRepository defines the interface for report metadata operations.
type ReportRepository interface {
	CreateReport(report *model.Report) error
	GetReportByID(id string) (*model.Report, error)
	GetReportsByRunID(runID string) ([]*model.Report, error)
}

// mysqlReportRepository implements ReportRepository for MySQL.
type mysqlReportRepository struct {
	DB *sql.DB
}

// NewMySQLReportRepository creates a new instance of mysqlReportRepository.
func NewMySQLReportRepository() ReportRepository {
	return &mysqlReportRepository{DB: db.DB}
}

// CreateReport adds a new report to the database.
func (r *mysqlReportRepository) CreateReport(report *model.Report) error {
	query := `INSERT INTO reports (id, run_id, title, target_mz, tolerance, top_peaks, object_path, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.Exec(query, report.ID, report.RunID, report.Title, report.TargetMz,
		report.Tolerance, report.TopPeaks, report.ObjectPath, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute CreateReport: %w", err)
	}
	return nil
}

// GetReportByID retrieves a report by its ID. Returns (nil, nil) when
// the report does not exist.
func (r *mysqlReportRepository) GetReportByID(id string) (*model.Report, error) {
	query := `SELECT id, run_id, title, target_mz, tolerance, top_peaks, object_path, created_at
	           FROM reports WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	report := &model.Report{}
	err := row.Scan(&report.ID, &report.RunID, &report.Title, &report.TargetMz,
		&report.Tolerance, &report.TopPeaks, &report.ObjectPath, &report.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan report by ID %s: %w", id, err)
	}
	return report, nil
}

// GetReportsByRunID retrieves all reports of a run, newest first.
func (r *mysqlReportRepository) GetReportsByRunID(runID string) ([]*model.Report, error) {
	query := `SELECT id, run_id, title, target_mz, tolerance, top_peaks, object_path, created_at
	           FROM reports WHERE run_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports for run %s: %w", runID, err)
	}
	defer rows.Close()

	reports := make([]*model.Report, 0)
	for rows.Next() {
		report := &model.Report{}
		err := rows.Scan(&report.ID, &report.RunID, &report.Title, &report.TargetMz,
			&report.Tolerance, &report.TopPeaks, &report.ObjectPath, &report.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report in GetReportsByRunID: %w", err)
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetReportsByRunID: %w", err)
	}
	return reports, nil
}

package repository

import (
	"database/sql"
	"fmt"

	"mzview/db"
	"mzview/model"
)

// RunRepository defines the interface for run metadata operations.
type RunRepository interface {
	CreateRun(run *model.Run) error
	GetRunByID(id string) (*model.Run, error)
	GetAllRuns() ([]*model.Run, error)
}

// mysqlRunRepository implements RunRepository for MySQL.
type mysqlRunRepository struct {
	DB *sql.DB
}

// NewMySQLRunRepository creates a new instance of mysqlRunRepository.
func NewMySQLRunRepository() RunRepository {
	return &mysqlRunRepository{DB: db.DB}
}

// CreateRun adds a new run to the database.
func (r *mysqlRunRepository) CreateRun(run *model.Run) error {
	query := `INSERT INTO runs (id, filename, size_bytes, spectrum_count, chromatogram_count, peak_count, object_path, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.Exec(query, run.ID, run.Filename, run.SizeBytes, run.SpectrumCount,
		run.ChromatogramCount, run.PeakCount, run.ObjectPath, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute CreateRun: %w", err)
	}
	return nil
}

// GetRunByID retrieves a run by its ID. Returns (nil, nil) when the
// run does not exist.
func (r *mysqlRunRepository) GetRunByID(id string) (*model.Run, error) {
	query := `SELECT id, filename, size_bytes, spectrum_count, chromatogram_count, peak_count, object_path, created_at
	           FROM runs WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	run := &model.Run{}
	err := row.Scan(&run.ID, &run.Filename, &run.SizeBytes, &run.SpectrumCount,
		&run.ChromatogramCount, &run.PeakCount, &run.ObjectPath, &run.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan run by ID %s: %w", id, err)
	}
	return run, nil
}

// GetAllRuns retrieves all runs, newest first.
func (r *mysqlRunRepository) GetAllRuns() ([]*model.Run, error) {
	query := `SELECT id, filename, size_bytes, spectrum_count, chromatogram_count, peak_count, object_path, created_at
	           FROM runs ORDER BY created_at DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.Run, 0)
	for rows.Next() {
		run := &model.Run{}
		err := rows.Scan(&run.ID, &run.Filename, &run.SizeBytes, &run.SpectrumCount,
			&run.ChromatogramCount, &run.PeakCount, &run.ObjectPath, &run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run in GetAllRuns: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllRuns: %w", err)
	}
	return runs, nil
}

package db

import (
	"database/sql"
	"fmt"

	"mzview/config"
	"mzview/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createRunsTable(); err != nil {
		return err
	}
	if err := createReportsTable(); err != nil {
		return err
	}
	logger.Info("Database initialization completed")
	return nil
}

func createRunsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id CHAR(36) PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		size_bytes BIGINT NOT NULL DEFAULT 0,
		spectrum_count INT NOT NULL DEFAULT 0,
		chromatogram_count INT NOT NULL DEFAULT 0,
		peak_count INT NOT NULL DEFAULT 0,
		object_path VARCHAR(767) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

func createReportsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS reports (
		id CHAR(36) PRIMARY KEY,
		run_id CHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		target_mz DOUBLE NOT NULL DEFAULT 0,
		tolerance DOUBLE NOT NULL DEFAULT 0,
		top_peaks INT NOT NULL DEFAULT 0,
		object_path VARCHAR(767) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_report_run FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	return nil
}

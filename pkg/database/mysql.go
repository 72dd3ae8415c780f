package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/contact-dispatch-service/environments"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

// RunMigrations creates the dispatch audit table.
func RunMigrations(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS dispatch_messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		job_id CHAR(36) NOT NULL,
		rule_index INT NOT NULL,
		row_index INT NOT NULL,
		contact_name VARCHAR(255) NOT NULL,
		phone_number VARCHAR(32) NOT NULL,
		content TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		message_id VARCHAR(100),
		error TEXT,
		attempted_at DATETIME(3) NOT NULL,
		INDEX idx_dispatch_messages_job (job_id, id),
		INDEX idx_dispatch_messages_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infof("Database migrations completed")

	return nil
}

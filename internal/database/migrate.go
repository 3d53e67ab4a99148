package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The MySQL email column uses a binary collation so the unique index
// compares emails case-sensitively, matching how logins look them up.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		full_name VARCHAR(255) NULL,
		hashed_password VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS todos (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		owner_id BIGINT UNSIGNED NOT NULL,
		KEY idx_todos_owner_created (owner_id, created_at),
		CONSTRAINT fk_todos_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NULL,
		hashed_password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES users (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_owner_created ON todos (owner_id, created_at)`,
}

// Migrate creates the users and todos tables when they do not exist yet.
// Statements run one at a time because the MySQL driver rejects
// multi-statement strings unless explicitly enabled.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case "mysql":
		stmts = mysqlSchema
	case "sqlite":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

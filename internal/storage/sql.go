package storage

import (
	"context"
	"database/sql"
	"errors"

	// Register the database/sql drivers used below.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver string
	schema string
	get    string
	upsert string
	delete string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS client_state (
		state_key TEXT PRIMARY KEY,
		state_value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	get: "SELECT state_value FROM client_state WHERE state_key = ?",
	upsert: `INSERT INTO client_state (state_key, state_value) VALUES (?, ?)
		ON CONFLICT(state_key) DO UPDATE SET state_value = excluded.state_value, updated_at = CURRENT_TIMESTAMP`,
	delete: "DELETE FROM client_state WHERE state_key = ?",
}

var mysqlDialect = dialect{
	driver: "mysql",
	schema: `CREATE TABLE IF NOT EXISTS client_state (
		state_key VARCHAR(191) PRIMARY KEY,
		state_value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	get:    "SELECT state_value FROM client_state WHERE state_key = ?",
	upsert: "INSERT INTO client_state (state_key, state_value) VALUES (?, ?) ON DUPLICATE KEY UPDATE state_value = VALUES(state_value)",
	delete: "DELETE FROM client_state WHERE state_key = ?",
}

type sqlStore struct {
	conn    *sql.DB
	dialect dialect
}

// NewSQLite opens (or creates) a sqlite file and ensures the state table.
// ":memory:" gives a throwaway database.
func NewSQLite(path string) (KV, error) {
	conn, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases from splitting per connection.
	conn.SetMaxOpenConns(1)
	return newSQLStore(conn, sqliteDialect)
}

// NewMySQL opens a MySQL database from a go-sql-driver DSN
// (user:pass@tcp(host:3306)/dbname).
func NewMySQL(dsn string) (KV, error) {
	conn, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, err
	}
	return newSQLStore(conn, mysqlDialect)
}

func newSQLStore(conn *sql.DB, d dialect) (KV, error) {
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(d.schema); err != nil {
		conn.Close()
		return nil, err
	}
	return &sqlStore{conn: conn, dialect: d}, nil
}

func (s *sqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.conn.QueryRowContext(ctx, s.dialect.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *sqlStore) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, s.dialect.upsert, key, value)
	return err
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	_, err := s.conn.ExecContext(ctx, s.dialect.delete, key)
	return err
}

func (s *sqlStore) Close() error {
	return s.conn.Close()
}

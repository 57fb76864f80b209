package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/ovtracker-map/internal/common/logger"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a connection
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type DB struct {
	conn    *sql.DB
	dialect Dialect
	logger  logger.Logger
}

// NewPostgres connects with lib/pq using a key=value connection string.
func NewPostgres(connStr string, logger logger.Logger) (*DB, error) {
	return open(Postgres, connStr, logger)
}

// NewSQLite opens a SQLite file in WAL mode.
func NewSQLite(path string, logger logger.Logger) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := open(SQLite, dsn, logger)
	if err != nil {
		return nil, err
	}
	// SQLite only supports one writer at a time
	db.conn.SetMaxOpenConns(1)
	return db, nil
}

func open(dialect Dialect, dsn string, logger logger.Logger) (*DB, error) {
	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("Database connection established", "dialect", dialect)

	return &DB{
		conn:    conn,
		dialect: dialect,
		logger:  logger,
	}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.conn.BeginTx(ctx, nil)
}

// DB returns the underlying connection pool
func (db *DB) DB() *sql.DB {
	return db.conn
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Logger returns the logger instance
func (db *DB) Logger() logger.Logger {
	return db.logger
}

// Rebind rewrites ? placeholders into $n for Postgres.
func (db *DB) Rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

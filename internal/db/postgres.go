package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// InitWarehousePostgres opens the read-only warehouse connection used by the
// fan-out reader, retrying while the database comes up.
func InitWarehousePostgres(dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			conn.SetMaxOpenConns(8)
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to warehouse postgres: %w", err)
}

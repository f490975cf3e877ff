package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the SQLite store. The handle is limited to
// a single connection: the pipeline is the only writer and the query layer
// issues short-lived statements, so one shared connection avoids SQLITE_BUSY
// without a separate pool.
//
// Foreign keys stay off (the SQLite default): crypto_prices declares a
// reference to cryptocurrencies, but the two tables are replace-loaded
// independently and may transiently disagree between pipeline steps.
func Open(path string) (*sql.DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)

	if err := d.Ping(); err != nil {
		d.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return d, nil
}

// Package zonedb stores the city/country directory in sqlite and serves
// zone lookups over an in-memory search index built at open time.
package zonedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS countries (
    code    TEXT PRIMARY KEY,
    name    TEXT NOT NULL,
    capital TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cities (
    city_key     TEXT PRIMARY KEY,
    country      TEXT NOT NULL,
    state        TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL,
    display_name TEXT NOT NULL,
    timezone     TEXT NOT NULL,
    population   INTEGER NOT NULL DEFAULT 0
);
`

// DB wraps the sqlite city database.
type DB struct {
	db *sql.DB
}

// OpenDB opens (creating if needed) the city database at dbPath.
func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// CityCount returns the number of imported cities.
func (d *DB) CityCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM cities").Scan(&n)
	return n, err
}

// CountryCount returns the number of imported countries.
func (d *DB) CountryCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM countries").Scan(&n)
	return n, err
}

type cityRow struct {
	Key         string
	Country     string
	State       string
	Name        string
	DisplayName string
	Timezone    string
	Population  int64
}

func (d *DB) allCities() ([]cityRow, error) {
	rows, err := d.db.Query(
		"SELECT city_key, country, state, name, display_name, timezone, population FROM cities")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []cityRow
	for rows.Next() {
		var c cityRow
		if err := rows.Scan(&c.Key, &c.Country, &c.State, &c.Name,
			&c.DisplayName, &c.Timezone, &c.Population); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (d *DB) allCountries() (map[string]string, error) {
	rows, err := d.db.Query("SELECT code, name FROM countries")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		names[code] = name
	}
	return names, rows.Err()
}

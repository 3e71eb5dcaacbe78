package zonedb

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ImportStats summarizes an import run.
type ImportStats struct {
	Countries int
	Cities    int
	Skipped   int
}

func (s ImportStats) String() string {
	return fmt.Sprintf("%d countries, %d cities (%d lines skipped)",
		s.Countries, s.Cities, s.Skipped)
}

// Import loads geonames-format dumps into the database, replacing any
// previous contents. citiesPath is a cities TSV (cities15000.txt layout),
// countriesPath a countryInfo TSV.
func (d *DB) Import(citiesPath, countriesPath string) (ImportStats, error) {
	var stats ImportStats

	tx, err := d.db.Begin()
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM countries"); err != nil {
		return stats, err
	}
	if _, err := tx.Exec("DELETE FROM cities"); err != nil {
		return stats, err
	}

	cf, err := os.Open(countriesPath)
	if err != nil {
		return stats, fmt.Errorf("open countries: %w", err)
	}
	defer cf.Close()

	scanner := bufio.NewScanner(cf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		// Trim only the line ending; TSV fields may legitimately be empty.
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			stats.Skipped++
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 6 {
			stats.Skipped++
			continue
		}
		// geonames countryInfo: 0=ISO code, 4=name, 5=capital
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO countries (code, name, capital) VALUES (?, ?, ?)",
			fields[0], fields[4], fields[5]); err != nil {
			return stats, err
		}
		stats.Countries++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read countries: %w", err)
	}

	zf, err := os.Open(citiesPath)
	if err != nil {
		return stats, fmt.Errorf("open cities: %w", err)
	}
	defer zf.Close()

	// City key collisions keep the larger population.
	populations := make(map[string]int64)

	scanner = bufio.NewScanner(zf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			stats.Skipped++
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 18 {
			stats.Skipped++
			continue
		}

		// geonames cities dump: 1=name, 8=country code, 10=admin1,
		// 14=population, 17=timezone
		name := fields[1]
		country := fields[8]
		state := ""
		if country == "US" {
			state = fields[10]
		}
		population, _ := strconv.ParseInt(fields[14], 10, 64)
		timezone := fields[17]

		displayName := name
		key := country + "/" + name
		if state != "" {
			displayName += " (" + state + ")"
			key += "/" + state
		}
		key = strings.ReplaceAll(key, " ", "_")

		if prev, ok := populations[key]; ok && population < prev {
			stats.Skipped++
			continue
		}
		populations[key] = population

		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO cities
			(city_key, country, state, name, display_name, timezone, population)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			key, country, state, name, displayName, timezone, population); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read cities: %w", err)
	}

	stats.Cities = len(populations)
	return stats, tx.Commit()
}

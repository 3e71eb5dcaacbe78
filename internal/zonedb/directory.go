package zonedb

import (
	"regexp"
	"sort"
	"strings"
)

// City is one searchable directory entry. Key is the stable location key
// ("HR/Zagreb", "US/Boston/MA") used everywhere outside this package.
type City struct {
	Key         string
	Name        string
	DisplayName string
	FullName    string
	Country     string
	Timezone    string
	Population  int64

	searchName string
	primWords  []string
	secWords   []string
}

// Directory is the in-memory search index over the imported cities.
// Read-only after Load, safe for concurrent use.
type Directory struct {
	cities []*City
	byKey  map[string]*City
}

var splitRe = regexp.MustCompile(`[\t !@#$%^&*()/:;,._-]+`)

// Load reads the whole city table into memory and precomputes the
// lowercase search fields.
func Load(db *DB) (*Directory, error) {
	countries, err := db.allCountries()
	if err != nil {
		return nil, err
	}
	rows, err := db.allCities()
	if err != nil {
		return nil, err
	}

	dir := &Directory{byKey: make(map[string]*City, len(rows))}
	for _, r := range rows {
		countryName := countries[r.Country]
		c := &City{
			Key:         r.Key,
			Name:        r.Name,
			DisplayName: r.DisplayName,
			FullName:    r.DisplayName + ", " + countryName,
			Country:     countryName,
			Timezone:    r.Timezone,
			Population:  r.Population,
		}
		c.searchName = strings.ToLower(c.FullName)
		c.primWords = strings.Fields(strings.ToLower(r.DisplayName))
		c.secWords = append(append([]string{}, c.primWords...),
			strings.Fields(strings.ToLower(countryName))...)
		dir.cities = append(dir.cities, c)
		dir.byKey[r.Key] = c
	}
	return dir, nil
}

// ByKey returns the city for an exact location key, nil when unknown.
func (d *Directory) ByKey(key string) *City {
	return d.byKey[key]
}

// Search ranks cities against a free-text query. Every query word must
// prefix-match some reference word; exact full-name matches rank first,
// then city-name matches, then city+country matches, larger population
// winning within a rank.
func (d *Directory) Search(query string) []*City {
	q := strings.ToLower(strings.TrimSpace(query))
	words := splitWords(q)
	if len(words) == 0 {
		return nil
	}

	type ranked struct {
		rank int
		city *City
	}
	var results []ranked
	for _, c := range d.cities {
		switch {
		case c.searchName == q:
			results = append(results, ranked{0, c})
		case wordsMatch(words, c.primWords):
			results = append(results, ranked{1, c})
		case wordsMatch(words, c.secWords):
			results = append(results, ranked{2, c})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].rank != results[j].rank {
			return results[i].rank < results[j].rank
		}
		return results[i].city.Population > results[j].city.Population
	})

	out := make([]*City, len(results))
	for i, r := range results {
		out[i] = r.city
	}
	return out
}

// FindOne returns the best match for a query: an exact key or exact
// full-name match when present, otherwise the top-ranked hit, nil when
// nothing matches.
func (d *Directory) FindOne(query string) *City {
	if c := d.byKey[strings.TrimSpace(query)]; c != nil {
		return c
	}
	results := d.Search(query)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

func splitWords(q string) []string {
	var words []string
	for _, w := range splitRe.Split(q, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// wordsMatch reports whether every search word prefix-matches at least
// one reference word.
func wordsMatch(searchWords, referenceWords []string) bool {
	for _, sw := range searchWords {
		found := false
		for _, rw := range referenceWords {
			if strings.HasPrefix(rw, sw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

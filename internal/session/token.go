// Package session maps the row collection's order, membership, and home
// selection to a compact shareable token and back. The token grammar is
// bit-exact for link interoperability: comma-separated location keys,
// "/" escaped as "::", a trailing "!" marking the home entry.
package session

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"tzsched/internal/table"
)

// Entry is one decoded token element.
type Entry struct {
	Key  string
	Home bool
}

// Encode serializes keys in order, marking homeKey. An empty key list
// encodes to the empty token.
func Encode(keys []string, homeKey string) string {
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		item := strings.ReplaceAll(key, "/", "::")
		if key == homeKey {
			item += "!"
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, ",")
}

// EncodeCollection serializes c's current display order and home
// selection.
func EncodeCollection(c *table.Collection) string {
	rows := c.Rows()
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return Encode(keys, c.HomeKey())
}

// Decode parses a token into its ordered entries. At most one entry is
// reported as home; when an externally edited token marks several, only
// the first is honored. The empty token decodes to nil.
func Decode(token string) []Entry {
	if token == "" {
		return nil
	}
	var entries []Entry
	seenHome := false
	for _, part := range strings.Split(token, ",") {
		key := strings.ReplaceAll(part, "::", "/")
		home := false
		if strings.HasSuffix(key, "!") {
			key = strings.TrimSuffix(key, "!")
			home = !seenHome
			seenHome = true
		}
		entries = append(entries, Entry{Key: key, Home: home})
	}
	return entries
}

// Reconcile replays decoded entries into c as adds. It applies only on
// first load: a collection populated by any means is left alone, so an
// encode-decode cycle never fights user edits. The home entry (or the
// first listed when none is marked) is added first so the remaining
// fetches run relative to it; the rest are added concurrently and the
// collection is then sorted back to the decoded order, since adds may
// resolve out of order. Entries that fail to resolve are skipped.
func Reconcile(ctx context.Context, c *table.Collection, entries []Entry) error {
	if c.Len() > 0 || len(entries) == 0 {
		return nil
	}

	homeKey := entries[0].Key
	for _, e := range entries {
		if e.Home {
			homeKey = e.Key
			break
		}
	}

	if _, err := c.AddByKey(ctx, homeKey); err != nil && err != table.ErrZoneNotFound {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		if e.Key == homeKey {
			continue
		}
		key := e.Key
		g.Go(func() error {
			_, err := c.AddByKey(ctx, key)
			if err == table.ErrZoneNotFound || err == table.ErrAlreadyPresent {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	order := make(map[string]int, len(entries))
	for i, e := range entries {
		order[e.Key] = i
	}
	c.SortBy(func(a, b *table.Row) bool {
		return order[a.Key] < order[b.Key]
	})
	return nil
}

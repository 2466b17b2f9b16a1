// Package address derives geocache keys and tiered search queries from the
// partial, often Hebrew-language address fields of donation-station records.
package address

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/avivlevi/donormap/internal/models"
)

// Script selects the writing system used for generated queries.
type Script int

const (
	// ScriptNative keeps the record's fields as-is.
	ScriptNative Script = iota
	// ScriptLatin transliterates every field to ASCII before assembly.
	ScriptLatin
)

// Query is one candidate search string for the geocoding provider.
type Query struct {
	Text  string // Text is the free-text query sent to the provider.
	Exact bool   // Exact is false when the query can only hit a city centroid.
}

// Key builds the geocache key for a record: City, Street, NumHouse and Name,
// each trimmed, joined with ", ", trailing empty segments stripped. No case
// folding is applied. The format is a storage contract: changing it orphans
// every existing cache row, so any re-keying must recompute keys for all
// persisted entries.
func Key(addr models.Address) string {
	key := strings.Join([]string{
		strings.TrimSpace(addr.City),
		strings.TrimSpace(addr.Street),
		strings.TrimSpace(addr.NumHouse),
		strings.TrimSpace(addr.Name),
	}, ", ")

	return strings.TrimRight(key, ", ")
}

// Queries generates the candidate search strings for one script variant,
// ordered from most to least specific. A tier is emitted only when every
// field it needs is non-empty after trimming; duplicate texts keep their
// first-seen position. Only the bare-city tier is marked inexact.
func Queries(addr models.Address, script Script) []Query {
	tr := func(s string) string {
		s = strings.TrimSpace(s)
		if script == ScriptLatin {
			s = strings.TrimSpace(unidecode.Unidecode(s))
		}
		return s
	}

	city := tr(addr.City)
	street := tr(addr.Street)
	num := tr(addr.NumHouse)
	name := tr(addr.Name)

	var queries []Query
	seen := make(map[string]bool)
	add := func(exact bool, parts ...string) {
		text := strings.Join(parts, ", ")
		if strings.TrimSpace(strings.Trim(text, ", ")) == "" || seen[text] {
			return
		}
		seen[text] = true
		queries = append(queries, Query{Text: text, Exact: exact})
	}

	if name != "" && street != "" && num != "" && city != "" {
		add(true, name, street+" "+num, city)
	}
	if street != "" && num != "" && city != "" {
		add(true, street+" "+num, city)
	}
	if name != "" && street != "" && city != "" {
		add(true, name, street, city)
	}
	if street != "" && city != "" {
		add(true, street, city)
	}
	if name != "" && city != "" {
		add(true, name, city)
	}
	if city != "" {
		add(false, city)
	}

	return queries
}

// Candidates returns the full resolution attempt order: every native-script
// tier followed by every transliterated tier, with texts deduplicated across
// the two lists. Native goes first because an exact-script match is more
// likely to be indexed correctly by the provider.
func Candidates(addr models.Address) []Query {
	native := Queries(addr, ScriptNative)
	latin := Queries(addr, ScriptLatin)

	seen := make(map[string]bool, len(native))
	candidates := make([]Query, 0, len(native)+len(latin))
	for _, query := range append(native, latin...) {
		if seen[query.Text] {
			continue
		}
		seen[query.Text] = true
		candidates = append(candidates, query)
	}

	return candidates
}

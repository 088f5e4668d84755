package cmdline

import (
	"sort"
	"strings"

	"github.com/Taishi66/kdeck/internal/domain"
)

const (
	// MaxCandidates caps every completion list.
	MaxCandidates = 200
	// MaxIdentities caps the identity catalog entries offered.
	MaxIdentities = 300
	// MaxRowsPerKind caps the cached row names offered per kind.
	MaxRowsPerKind = 150
)

// Vocabulary is the dynamic material completion draws from.
type Vocabulary struct {
	Catalog     domain.IdentityCatalog
	Rows        map[domain.Kind][]domain.RowIdentity
	CustomKinds []domain.CustomResourceDescriptor
}

// Words returns every candidate line for mode, unfiltered.
func (v Vocabulary) Words(mode Mode) []string {
	var out []string
	for _, kw := range keywords {
		if mode == ModeJump && !kw.jump {
			continue
		}
		out = append(out, kw.words[0])
	}
	for _, k := range domain.AllKinds() {
		out = append(out, strings.ToLower(k.Title()), k.Alias())
	}

	identities := 0
	addIdentity := func(prefix string, names []string) {
		for _, n := range names {
			if identities >= MaxIdentities {
				return
			}
			out = append(out, prefix+" "+n)
			identities++
		}
	}
	addIdentity("ctx", v.Catalog.Contexts)
	addIdentity("cluster", v.Catalog.Clusters)
	addIdentity("user", v.Catalog.Users)

	for _, k := range domain.AllKinds() {
		rows := v.Rows[k]
		if len(rows) > MaxRowsPerKind {
			rows = rows[:MaxRowsPerKind]
		}
		for _, id := range rows {
			if k == domain.KindNamespaces {
				out = append(out, "ns "+id.Name)
				continue
			}
			out = append(out, k.Alias()+" "+id.String())
		}
	}

	for _, d := range v.CustomKinds {
		out = append(out, "crd "+d.ID())
	}
	return out
}

// Complete returns the sorted, deduplicated candidates for input.
func Complete(mode Mode, input string, v Vocabulary) []string {
	return Filter(stripLeader(input), v.Words(mode))
}

// Filter keeps the words matching query: either query is a prefix of the
// word, or every token of query is a prefix of some token of the word.
// Tokens are split on whitespace, "/", ":", "-" and ".". Matching is
// case-insensitive.
func Filter(query string, words []string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	qTokens := splitTokens(q)

	seen := make(map[string]struct{}, len(words))
	var out []string
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		if q == "" || matches(q, qTokens, strings.ToLower(w)) {
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	sort.Strings(out)
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

func matches(q string, qTokens []string, word string) bool {
	if strings.HasPrefix(word, q) {
		return true
	}
	if len(qTokens) == 0 {
		return false
	}
	wTokens := splitTokens(word)
	for _, qt := range qTokens {
		found := false
		for _, wt := range wTokens {
			if strings.HasPrefix(wt, qt) {
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

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '/', ':', '-', '.':
			return true
		}
		return false
	})
}

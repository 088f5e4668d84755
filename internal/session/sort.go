package session

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Taishi66/kdeck/internal/domain"
)

// SortIndicator appends ▲ or ▼ to the header of the sorted column.
func SortIndicator(header string, col int, state SortState) string {
	if state.Column < 0 || state.Column != col {
		return header
	}
	if state.Ascending {
		return header + " ▲"
	}
	return header + " ▼"
}

// sortRows returns rows ordered by state without touching the input.
func sortRows(rows []domain.Row, headers []string, state SortState) []domain.Row {
	if state.Column < 0 || len(rows) < 2 {
		return rows
	}
	col := state.Column
	age := col < len(headers) && isAgeHeader(headers[col])
	sorted := make([]domain.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := cell(sorted[i], col), cell(sorted[j], col)
		if state.Ascending {
			return compareCells(a, b, age) < 0
		}
		return compareCells(b, a, age) < 0
	})
	return sorted
}

func cell(r domain.Row, col int) string {
	if col < len(r.Columns) {
		return r.Columns[col]
	}
	return ""
}

func isAgeHeader(h string) bool {
	return h == "AGE" || h == "LAST SEEN"
}

// compareCells orders two cells as durations, numbers, "ready/desired"
// pairs, or case-insensitive text, in that order of preference.
func compareCells(a, b string, age bool) int {
	if age {
		return cmpInt(parseAgeToSec(a), parseAgeToSec(b))
	}
	if x, err := strconv.ParseFloat(a, 64); err == nil {
		if y, err := strconv.ParseFloat(b, 64); err == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := parseReady(a); ok {
		if y, ok := parseReady(b); ok {
			return cmpInt(x, y)
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// parseReady reads the left side of "x/y".
func parseReady(s string) (int, bool) {
	left, _, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(left))
	return n, err == nil
}

// parseAgeToSec converts compound ages like "2d3h" or "1y20d" to seconds.
// Unparseable ages sort as zero.
func parseAgeToSec(age string) int {
	age = strings.TrimSpace(age)
	total, num := 0, 0
	for _, r := range age {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 's':
			total, num = total+num, 0
		case r == 'm':
			total, num = total+num*60, 0
		case r == 'h':
			total, num = total+num*3600, 0
		case r == 'd':
			total, num = total+num*86400, 0
		case r == 'y':
			total, num = total+num*365*86400, 0
		default:
			return 0
		}
	}
	return total
}

// cycleSort advances the active kind through none, col0 asc, col0 desc,
// col1 asc and so on, keeping the selected row.
func (s *Session) cycleSort() {
	t := s.tables[s.kind]
	if len(t.Headers) == 0 {
		s.info("nothing to sort")
		return
	}
	var keep *domain.RowIdentity
	if row, ok := s.selectedRow(); ok {
		keep = &row.ID
	}
	prev := s.selectedIndex(s.kind)

	st := s.sorts[s.kind]
	switch {
	case st.Column < 0:
		st = SortState{Column: 0, Ascending: true}
	case st.Ascending:
		st.Ascending = false
	case st.Column+1 < len(t.Headers):
		st = SortState{Column: st.Column + 1, Ascending: true}
	default:
		st = SortState{Column: -1, Ascending: true}
	}
	s.sorts[s.kind] = st
	t.Selected = reselect(s.visible(s.kind), keep, prev)

	if st.Column < 0 {
		s.info("sort cleared")
		return
	}
	arrow := "▲"
	if !st.Ascending {
		arrow = "▼"
	}
	s.info("sorted by %s %s", t.Headers[st.Column], arrow)
}

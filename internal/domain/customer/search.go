package customer

import "strings"

// Search returns the rows whose string form contains the query substring in
// any column, case-insensitively, preserving input order. An empty query
// matches every row, since the empty string is a substring of everything.
func Search(rows []Customer, query string) []Customer {
	q := strings.ToLower(query)
	matches := make([]Customer, 0)
	for _, row := range rows {
		for _, cell := range row.Fields() {
			if strings.Contains(strings.ToLower(cell), q) {
				matches = append(matches, row)
				break
			}
		}
	}
	return matches
}

package search

import "strings"

// ProcessQuery trims the query and collapses internal runs of whitespace.
// It returns ErrEmptyQuery when nothing is left.
func ProcessQuery(query string) (string, error) {
	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

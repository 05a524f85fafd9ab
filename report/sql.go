package report

import (
	"errors"
	"regexp"
	"strings"
)

var sqlFence = regexp.MustCompile("(?s)```(?:sql|SQL)?\\s*\\n(.*?)\\n?```")

// ExtractSQL pulls the query out of a model reply. A fenced block wins;
// otherwise the whole reply is taken as the query.
func ExtractSQL(text string) string {
	if m := sqlFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

var (
	ErrEmptyQuery      = errors.New("generator returned an empty query")
	ErrNotReadOnly     = errors.New("only SELECT queries are allowed")
	ErrMultipleQueries = errors.New("only a single statement is allowed")
)

// EnsureReadOnly accepts a single SELECT or WITH statement and returns it
// without its trailing semicolon.
func EnsureReadOnly(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimRight(q, "; \t\n"))
	if q == "" {
		return "", ErrEmptyQuery
	}
	if strings.Contains(q, ";") {
		return "", ErrMultipleQueries
	}
	first := strings.ToUpper(strings.Fields(q)[0])
	if first != "SELECT" && first != "WITH" {
		return "", ErrNotReadOnly
	}
	return q, nil
}

// Package report turns natural language questions into read-only SQL with
// an LLM, runs them and manages saved reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/metrics"
)

var (
	ErrNotConfigured    = errors.New("report generator is not configured")
	ErrGenerationFailed = errors.New("failed to generate a valid SQL query")
	ErrEmptyQuestion    = errors.New("report query is required")
)

// Generator produces a reply, expected to hold one SQL query, for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Result struct {
	SQL     string                   `json:"sql"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"results"`
}

type Agent struct {
	db          *gorm.DB
	gen         Generator
	maxAttempts int
	siteName    string
	now         func() time.Time
	log         *zap.Logger
}

func NewAgent(db *gorm.DB, gen Generator, maxAttempts int, siteName string, log *zap.Logger) *Agent {
	if maxAttempts < 1 {
		maxAttempts = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		db:          db,
		gen:         gen,
		maxAttempts: maxAttempts,
		siteName:    siteName,
		now:         time.Now,
		log:         log,
	}
}

// Run answers question with the rows of a generated query.
func (a *Agent) Run(ctx context.Context, question string) (*Result, error) {
	sql, err := a.GenerateSQL(ctx, question)
	if err != nil {
		metrics.ReportRuns.WithLabelValues("generation_failed").Inc()
		return nil, err
	}
	res, err := Execute(ctx, a.db, sql, 0)
	if err != nil {
		metrics.ReportRuns.WithLabelValues("execution_failed").Inc()
		return nil, err
	}
	metrics.ReportRuns.WithLabelValues("ok").Inc()
	return res, nil
}

// GenerateSQL asks the generator for a query and validates it against the
// database. Failures are fed back into the next prompt until attempts run out.
func (a *Agent) GenerateSQL(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if a.gen == nil {
		return "", ErrNotConfigured
	}

	schema, err := DescribeSchema(ctx, a.db)
	if err != nil {
		return "", err
	}

	var lastQuery, lastErr string
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		prompt := a.prompt(schema, question, lastQuery, lastErr)
		reply, err := a.gen.Generate(ctx, prompt)
		if err != nil {
			// transport failures end the run; only rejected queries are retried
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}

		query := ExtractSQL(reply)
		lastQuery = query
		query, err = EnsureReadOnly(query)
		if err == nil {
			err = a.validate(ctx, query)
		}
		if err == nil {
			a.log.Info("report query generated", zap.Int("attempt", attempt))
			return query, nil
		}

		lastErr = err.Error()
		a.log.Warn("generated query rejected",
			zap.Int("attempt", attempt),
			zap.String("query", lastQuery),
			zap.Error(err))
	}
	return "", fmt.Errorf("%w after %d attempts", ErrGenerationFailed, a.maxAttempts)
}

func (a *Agent) validate(ctx context.Context, query string) error {
	_, err := Execute(ctx, a.db, query, 1)
	return err
}

func (a *Agent) prompt(schema, question, lastQuery, lastErr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert SQL analyst for an application called %q.\n", a.siteName)
	fmt.Fprintf(&b, "Your task is to convert a user's question into a valid %s query.\n\n", dialectName(a.db))
	fmt.Fprintf(&b, "The database schema is as follows:\n---\n%s---\n\n", schema)
	b.WriteString("RULES:\n")
	b.WriteString("- Respond with a single read-only SELECT query inside a ```sql block.\n")
	fmt.Fprintf(&b, "- Assume today's date is %s.\n\n", a.now().Format("2006-01-02"))
	fmt.Fprintf(&b, "User's question: %q", question)

	if lastQuery != "" && lastErr != "" {
		fmt.Fprintf(&b, "\n\n---\nThe previous query you generated failed.\nPrevious Query: `%s`\nError Message: %q\nPlease correct the SQL query.\n", lastQuery, lastErr)
	}
	return b.String()
}

func dialectName(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "PostgreSQL"
	case "sqlite":
		return "SQLite"
	default:
		return db.Dialector.Name()
	}
}

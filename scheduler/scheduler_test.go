package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasa-cafe/database/testdb"
	"rasa-cafe/model"
)

func TestPruneSequences(t *testing.T) {
	db := testdb.New(t)
	for _, day := range []string{"20250301", "20250302", "20250303", "20250309", "20250310"} {
		require.NoError(t, db.Create(&model.OrderSequence{Day: day, Counter: 4}).Error)
	}

	j := New(db, time.UTC, nil)
	j.now = func() time.Time { return time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC) }

	n, err := j.PruneSequences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var days []string
	require.NoError(t, db.Model(&model.OrderSequence{}).Order("day").Pluck("day", &days).Error)
	assert.Equal(t, []string{"20250303", "20250309", "20250310"}, days)
}

func TestRefillCredits(t *testing.T) {
	db := testdb.New(t)
	spent := model.User{Name: "A", Email: "a@example.com", Password: "x", CreditLimit: 500, CreditBalance: 20}
	full := model.User{Name: "B", Email: "b@example.com", Password: "x", CreditLimit: 300, CreditBalance: 300}
	require.NoError(t, db.Create(&spent).Error)
	require.NoError(t, db.Create(&full).Error)

	n, err := New(db, time.UTC, nil).RefillCredits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, db.First(&spent, "id = ?", spent.ID).Error)
	assert.Equal(t, int64(500), spent.CreditBalance)
}

func TestStartStopsWithContext(t *testing.T) {
	db := testdb.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(db, time.UTC, nil).Start(ctx, true) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

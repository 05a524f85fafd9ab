package order

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rasa-cafe/model"
)

const dayLayout = "20060102"

// The upsert takes a row lock on the day's counter, so concurrent creators
// queue behind each other until the holder commits or rolls back.
const nextSequenceSQL = `INSERT INTO order_sequences (day, counter) VALUES (?, 1)
ON CONFLICT (day) DO UPDATE SET counter = order_sequences.counter + 1
RETURNING counter`

// maxSkips bounds how many already-taken ids are stepped over, which only
// happens when orders predate the counter row.
const maxSkips = 1000

func formatOrderID(day string, n int) string {
	return fmt.Sprintf("%s-%d", day, n)
}

func nextSequence(tx *gorm.DB, day string) (int, error) {
	var n int
	if err := tx.Raw(nextSequenceSQL, day).Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("allocate order number: %w", err)
	}
	if n < 1 {
		return 0, errors.New("allocate order number: counter not returned")
	}
	return n, nil
}

// allocateOrderID returns the next unused <YYYYMMDD>-<N> id for now's day.
func allocateOrderID(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format(dayLayout)
	for i := 0; i < maxSkips; i++ {
		n, err := nextSequence(tx, day)
		if err != nil {
			return "", err
		}
		id := formatOrderID(day, n)

		var taken int64
		if err := tx.Model(&model.Order{}).Where("id = ?", id).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("check order id: %w", err)
		}
		if taken == 0 {
			return id, nil
		}
	}
	return "", &ConflictError{Msg: "no free order number for " + day}
}

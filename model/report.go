package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONText keeps a client-supplied JSON document verbatim in a text column.
type JSONText json.RawMessage

func (JSONText) GormDataType() string {
	return "text"
}

func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONText) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONText(v)
	default:
		return fmt.Errorf("unsupported type %T for json text", value)
	}
	return nil
}

func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}

type Report struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:36"`
	AdminID             string    `json:"adminId" gorm:"size:36;not null;index"`
	Name                string    `json:"name" gorm:"not null"`
	NLQuery             string    `json:"nlQuery"`
	SQLQuery            string    `json:"sqlQuery" gorm:"not null"`
	VizType             string    `json:"vizType" gorm:"size:32"`
	ChartConfig         JSONText  `json:"chartConfig"`
	ConversationHistory JSONText  `json:"conversationHistory"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.VizType == "" {
		r.VizType = "table"
	}
	return nil
}

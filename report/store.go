package report

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"rasa-cafe/model"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrNameRequired   = errors.New("report name is required")
)

// IsInvalid reports whether err was caused by the caller's input.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrEmptyQuestion) ||
		errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrNotReadOnly) ||
		errors.Is(err, ErrMultipleQueries)
}

type SaveInput struct {
	Name                string         `json:"name"`
	NLQuery             string         `json:"nlQuery"`
	SQLQuery            string         `json:"sqlQuery"`
	VizType             string         `json:"vizType"`
	ChartConfig         model.JSONText `json:"chartConfig"`
	ConversationHistory model.JSONText `json:"conversationHistory"`
}

// Save stores a report for adminID. The query must pass the same read-only
// check the generator's output does.
func Save(ctx context.Context, db *gorm.DB, adminID string, in SaveInput) (*model.Report, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}
	query, err := EnsureReadOnly(in.SQLQuery)
	if err != nil {
		return nil, err
	}
	r := &model.Report{
		AdminID:             adminID,
		Name:                strings.TrimSpace(in.Name),
		NLQuery:             in.NLQuery,
		SQLQuery:            query,
		VizType:             in.VizType,
		ChartConfig:         in.ChartConfig,
		ConversationHistory: in.ConversationHistory,
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// List returns adminID's saved reports, newest first.
func List(ctx context.Context, db *gorm.DB, adminID string) ([]model.Report, error) {
	reports := []model.Report{}
	err := db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func Get(ctx context.Context, db *gorm.DB, adminID, id string) (*model.Report, error) {
	var r model.Report
	err := db.WithContext(ctx).Where("id = ? AND admin_id = ?", id, adminID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func Delete(ctx context.Context, db *gorm.DB, adminID, id string) error {
	res := db.WithContext(ctx).Where("id = ? AND admin_id = ?", id, adminID).Delete(&model.Report{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

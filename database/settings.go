package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rasa-cafe/model"
)

// FeatureEnabled reads a feature flag. A missing row counts as disabled.
func FeatureEnabled(ctx context.Context, db *gorm.DB, feature string) (bool, error) {
	var flag model.FeatureFlag
	err := db.WithContext(ctx).Where("feature = ?", feature).Limit(1).Find(&flag).Error
	if err != nil {
		return false, fmt.Errorf("read feature %s: %w", feature, err)
	}
	return flag.IsEnabled, nil
}

func SetFeature(ctx context.Context, db *gorm.DB, feature string, enabled bool) error {
	flag := model.FeatureFlag{Feature: feature, IsEnabled: enabled}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feature"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled"}),
	}).Create(&flag).Error
	if err != nil {
		return fmt.Errorf("set feature %s: %w", feature, err)
	}
	return nil
}

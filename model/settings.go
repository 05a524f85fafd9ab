package model

const FeatureCreditSystem = "creditSystem"

// FeatureFlag is a process-wide toggle stored in the configs table.
type FeatureFlag struct {
	Feature   string `json:"feature" gorm:"primaryKey;size:64"`
	IsEnabled bool   `json:"isEnabled" gorm:"not null"`
}

func (FeatureFlag) TableName() string {
	return "configs"
}

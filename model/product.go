package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a menu entry. Disabled products stay in the table so that
// historical orders keep resolving.
type Product struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	Name            string    `json:"name" gorm:"not null"`
	Price           int64     `json:"price" gorm:"not null"`
	Category        string    `json:"category" gorm:"not null;index"`
	ImageURL        string    `json:"imageUrl"`
	Rating          float64   `json:"rating"`
	MaxOrderPerUser int       `json:"maxOrderPerUser"`
	Description     string    `json:"description"`
	Stock           int       `json:"stock" gorm:"not null;check:stock >= 0"`
	IsDisabled      bool      `json:"isDisabled" gorm:"not null;index"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultCreditLimit int64 = 1000000

type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	Name           string    `json:"name" gorm:"not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"not null"`
	Phone          string    `json:"phone"`
	Country        string    `json:"country"`
	City           string    `json:"city"`
	Age            int       `json:"age"`
	Position       string    `json:"position" gorm:"index"`
	CreditLimit    int64     `json:"creditLimit" gorm:"not null"`
	CreditBalance  int64     `json:"creditBalance" gorm:"not null"`
	Role           Role      `json:"role" gorm:"size:16;not null"`
	EmployeeNumber *string   `json:"employeeNumber" gorm:"uniqueIndex;size:64"`
	DefaultFloorID *uint     `json:"defaultFloorId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

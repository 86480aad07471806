package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Volunteer earns credits by attending activities.
type Volunteer struct {
	DefaultModel
	Name     string
	Email    string `gorm:"uniqueIndex"`
	Age      int    `gorm:"check:age >= 13 AND age <= 100"`
	RegionID uuid.UUID
	Region   Region `json:"-"`
}

// BeforeSave trims whitespace and normalizes the email address
func (v *Volunteer) BeforeSave(_ *gorm.DB) error {
	v.Name = strings.TrimSpace(v.Name)
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	return nil
}

// BeforeCreate verifies references to other resources
func (v *Volunteer) BeforeCreate(tx *gorm.DB) error {
	_ = v.DefaultModel.BeforeCreate(tx)
	return tx.First(&Region{}, "id = ?", v.RegionID).Error
}

package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a volunteering initiative run by an organization within a
// region. Allocations disburse credit value to projects.
type Project struct {
	DefaultModel
	NgoID       uuid.UUID
	Ngo         Organization `json:"-" gorm:"foreignKey:NgoID"`
	RegionID    uuid.UUID
	Region      Region `json:"-"`
	Name        string
	Description string
}

func (p *Project) BeforeSave(_ *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	return nil
}

// BeforeCreate verifies references to other resources
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	_ = p.DefaultModel.BeforeCreate(tx)

	err := tx.First(&Organization{}, "id = ?", p.NgoID).Error
	if err != nil {
		return err
	}

	return tx.First(&Region{}, "id = ?", p.RegionID).Error
}

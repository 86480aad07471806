package models

import (
	"strings"

	"gorm.io/gorm"
)

// Company sponsors allocations through pre-approved project budgets.
type Company struct {
	DefaultModel
	Name string
}

func (c *Company) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	return nil
}

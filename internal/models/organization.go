package models

import (
	"strings"

	"gorm.io/gorm"
)

// OrganizationType distinguishes non-governmental and non-business
// entities running projects.
type OrganizationType string

const (
	OrganizationTypeNGO OrganizationType = "NGO"
	OrganizationTypeNBE OrganizationType = "NBE"
)

// Organization runs projects that volunteers attend.
type Organization struct {
	DefaultModel
	Type OrganizationType `gorm:"check:type IN ('NGO', 'NBE')"`
	Name string
}

func (o *Organization) BeforeSave(_ *gorm.DB) error {
	o.Name = strings.TrimSpace(o.Name)
	return nil
}

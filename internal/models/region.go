package models

import (
	"strings"

	"gorm.io/gorm"
)

// Region is a geographic area volunteers and projects belong to. The
// free choice half of a credit can only be allocated within the region
// of the attended project.
type Region struct {
	DefaultModel
	Name string `gorm:"uniqueIndex:regions_name"`
}

// BeforeSave trims whitespace from the name
func (r *Region) BeforeSave(_ *gorm.DB) error {
	r.Name = strings.TrimSpace(r.Name)
	return nil
}

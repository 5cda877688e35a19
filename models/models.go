// Package models holds the gorm record types persisted by the
// descriptor registry.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// DescriptorRecord is one named descriptor text stored in the
// registry, keyed by Name and content-addressed by Digest so a
// conflicting re-registration under the same name can be detected.
// Meta carries small free-form metadata that isn't worth its own
// column; registry.Scope.Put records which tool registered the entry.
type DescriptorRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Text      string `gorm:"not null"`
	Digest    string `gorm:"not null"`
	Meta      datatypes.JSONMap
	CreatedAt time.Time
}

func (DescriptorRecord) TableName() string { return "descriptor_records" }

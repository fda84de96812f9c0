package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Identity struct {
	gorm.Model

	StixID uuid.UUID `gorm:"column:stix_id;type:uuid;uniqueIndex"` // Suffix of the STIX id (identity--<uuid>)

	Name               string `gorm:"column:name;size:120;uniqueIndex"`
	Description        string `gorm:"column:description"`
	ContactInformation string `gorm:"column:contact_information"`
	Location           string `gorm:"column:location"`

	IdentityRoleID  *uint          `gorm:"column:identity_role_id;index"`
	IdentityClassID *uint          `gorm:"column:identity_class_id;index"`
	IdentityRole    *IdentityRole  `gorm:"foreignKey:IdentityRoleID"`
	IdentityClass   *IdentityClass `gorm:"foreignKey:IdentityClassID"`
}

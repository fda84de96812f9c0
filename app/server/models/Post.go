package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	gorm.Model

	StixID uuid.UUID `gorm:"column:stix_id;type:uuid;uniqueIndex"` // Suffix of the STIX id (note--<uuid>)

	Text        string `gorm:"column:text"`
	Description string `gorm:"column:description"`
}

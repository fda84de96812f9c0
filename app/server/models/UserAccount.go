package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type UserAccount struct {
	gorm.Model

	StixID uuid.UUID `gorm:"column:stix_id;type:uuid;uniqueIndex"` // Suffix of the STIX id (user-account--<uuid>)

	Name              string     `gorm:"column:name;size:120;uniqueIndex"` // Shown as display_name in STIX
	Description       string     `gorm:"column:description"`
	AccountType       string     `gorm:"column:account_type;size:60"`
	AccountCreated    *time.Time `gorm:"column:account_created"`
	AccountIsDisabled bool       `gorm:"column:account_is_disabled"`
}

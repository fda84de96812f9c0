package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type ThreatActor struct {
	gorm.Model

	StixID uuid.UUID `gorm:"column:stix_id;type:uuid;uniqueIndex"` // Suffix of the STIX id (threat-actor--<uuid>)

	// Basic info
	Name               string   `gorm:"column:name;size:120;uniqueIndex"`
	Description        string   `gorm:"column:description"`
	ContactInformation string   `gorm:"column:contact_information"`
	Aliases            []string `gorm:"column:aliases;serializer:json"` // Stored as JSON so the column works on any dialect
	Goals              []string `gorm:"column:goals;serializer:json"`

	// Sightings
	FirstSeen *time.Time `gorm:"column:first_seen"`
	LastSeen  *time.Time `gorm:"column:last_seen"`

	// Vocabulary references
	ThreatActorTypeID     *uint `gorm:"column:threat_actor_type_id;index"`
	ThreatActorRoleID     *uint `gorm:"column:threat_actor_role_id;index"`
	SophisticationID      *uint `gorm:"column:sophistication_id;index"`
	ResourceLevelID       *uint `gorm:"column:resource_level_id;index"`
	PrimaryMotivationID   *uint `gorm:"column:primary_motivation_id;index"`
	SecondaryMotivationID *uint `gorm:"column:secondary_motivation_id;index"`

	PersonalMotivations []string `gorm:"column:personal_motivations;serializer:json"`

	// Used when joining
	ThreatActorType     *ThreatActorType           `gorm:"foreignKey:ThreatActorTypeID"`
	ThreatActorRole     *ThreatActorRole           `gorm:"foreignKey:ThreatActorRoleID"`
	Sophistication      *ThreatActorSophistication `gorm:"foreignKey:SophisticationID"`
	ResourceLevel       *AttackResourceLevel       `gorm:"foreignKey:ResourceLevelID"`
	PrimaryMotivation   *AttackMotivation          `gorm:"foreignKey:PrimaryMotivationID"`
	SecondaryMotivation *AttackMotivation          `gorm:"foreignKey:SecondaryMotivationID"`
}

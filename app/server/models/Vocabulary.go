package models

import "gorm.io/gorm"

// Vocabulary is the shared shape of every controlled-vocabulary table.
// Each table still gets its own type so that gorm keeps them apart.
type Vocabulary struct {
	gorm.Model

	Name        string `gorm:"column:name;size:60;uniqueIndex"`
	Description string `gorm:"column:description;size:200"`
}

func (v *Vocabulary) Base() *Vocabulary { return v }

type ThreatActorType struct{ Vocabulary }

type ThreatActorRole struct{ Vocabulary }

type ThreatActorSophistication struct{ Vocabulary }

type AttackResourceLevel struct{ Vocabulary }

type AttackMotivation struct{ Vocabulary }

type IdentityClass struct{ Vocabulary }

type IdentityRole struct{ Vocabulary }

// VocabularyModel is satisfied by pointers to the vocabulary tables above,
// e.g. VocabularyModel[ThreatActorType].
type VocabularyModel[T any] interface {
	*T
	Base() *Vocabulary
}

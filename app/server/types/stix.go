package types

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"time"
)

const (
	StixSpecVersion = "2.1"
	StixTimeLayout  = "2006-01-02T15:04:05.000Z"
)

const (
	StixTypeBundle      = "bundle"
	StixTypeIdentity    = "identity"
	StixTypeThreatActor = "threat-actor"
	StixTypeUserAccount = "user-account"
	StixTypeNote        = "note"
)

func StixID(stixType string, id uuid.UUID) string {
	return fmt.Sprintf("%s--%s", stixType, id.String())
}

// Timestamp is a STIX timestamp: UTC with millisecond precision.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

func NewTimestampP(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := Timestamp(*t)
	return &ts
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(StixTimeLayout))
}

type Bundle struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Objects []any  `json:"objects"`
}

// DomainObject holds the properties shared by every SDO.
type DomainObject struct {
	Type        string    `json:"type"`
	SpecVersion string    `json:"spec_version"`
	ID          string    `json:"id"`
	Created     Timestamp `json:"created"`
	Modified    Timestamp `json:"modified"`
}

type Identity struct {
	DomainObject
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Roles              []string `json:"roles,omitempty"`
	IdentityClass      string   `json:"identity_class,omitempty"`
	ContactInformation string   `json:"contact_information,omitempty"`
	Location           string   `json:"x_location,omitempty"`
}

type ThreatActor struct {
	DomainObject
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	ThreatActorTypes     []string   `json:"threat_actor_types,omitempty"`
	Aliases              []string   `json:"aliases,omitempty"`
	FirstSeen            *Timestamp `json:"first_seen,omitempty"`
	LastSeen             *Timestamp `json:"last_seen,omitempty"`
	Roles                []string   `json:"roles,omitempty"`
	Goals                []string   `json:"goals,omitempty"`
	Sophistication       string     `json:"sophistication,omitempty"`
	ResourceLevel        string     `json:"resource_level,omitempty"`
	PrimaryMotivation    string     `json:"primary_motivation,omitempty"`
	SecondaryMotivations []string   `json:"secondary_motivations,omitempty"`
	PersonalMotivations  []string   `json:"personal_motivations,omitempty"`
	ContactInformation   string     `json:"x_contact_information,omitempty"`
}

// Note carries a post. STIX wants object_refs, posts are free standing so the list may be empty.
type Note struct {
	DomainObject
	Abstract   string   `json:"abstract,omitempty"`
	Content    string   `json:"content"`
	ObjectRefs []string `json:"object_refs,omitempty"`
}

// UserAccount is a cyber observable, which has no created/modified.
type UserAccount struct {
	Type           string     `json:"type"`
	SpecVersion    string     `json:"spec_version"`
	ID             string     `json:"id"`
	DisplayName    string     `json:"display_name"`
	AccountType    string     `json:"account_type,omitempty"`
	AccountCreated *Timestamp `json:"account_created,omitempty"`
	IsDisabled     bool       `json:"is_disabled"`
	Description    string     `json:"x_description,omitempty"`
}

package types

import (
	"encoding/json"
	"time"
)

type AlertKind string

const (
	AlertKindBlood AlertKind = "blood"
	AlertKindOrgan AlertKind = "organ"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

type AlertStatus string

const (
	AlertStatusPending   AlertStatus = "pending"
	AlertStatusAccepted  AlertStatus = "accepted"
	AlertStatusResolved  AlertStatus = "resolved"
	AlertStatusCancelled AlertStatus = "cancelled"
)

func (s AlertStatus) Terminal() bool {
	return s == AlertStatusResolved || s == AlertStatusCancelled
}

// AlertNeed is what an alert asks for: exactly one of BloodNeed or OrganNeed.
type AlertNeed interface {
	Kind() AlertKind
	String() string
	isAlertNeed()
}

type BloodNeed struct {
	BloodType BloodType
}

func (BloodNeed) Kind() AlertKind  { return AlertKindBlood }
func (n BloodNeed) String() string { return string(n.BloodType) + " blood" }
func (BloodNeed) isAlertNeed()     {}

type OrganNeed struct {
	Organ Organ
}

func (OrganNeed) Kind() AlertKind  { return AlertKindOrgan }
func (n OrganNeed) String() string { return string(n.Organ) }
func (OrganNeed) isAlertNeed()     {}

type ContactInfo struct {
	Phone    string  `json:"phone"`
	Hospital *string `json:"hospital,omitempty"`
}

type Alert struct {
	ID          string
	RequesterID string
	Need        AlertNeed
	Urgency     Urgency
	Description string
	Location    Location
	Contact     ContactInfo
	Status      AlertStatus
	AcceptedBy  *string
	AcceptedAt  *time.Time
	ResolvedAt  *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BloodTypeNeeded returns the requested blood type for blood alerts.
func (a *Alert) BloodTypeNeeded() (BloodType, bool) {
	n, ok := a.Need.(BloodNeed)
	return n.BloodType, ok
}

// OrganNeeded returns the requested organ for organ alerts.
func (a *Alert) OrganNeeded() (Organ, bool) {
	n, ok := a.Need.(OrganNeed)
	return n.Organ, ok
}

func (a *Alert) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	if a.RequesterID == userID {
		return true
	}
	return a.AcceptedBy != nil && *a.AcceptedBy == userID
}

// AlertStatusUpdate carries the fields written together with a status change.
type AlertStatusUpdate struct {
	Status      AlertStatus
	AcceptedBy  *string
	AcceptedAt  *time.Time
	ResolvedAt  *time.Time
	CancelledAt *time.Time
	UpdatedAt   time.Time
}

type alertJSON struct {
	ID              string      `json:"id"`
	RequesterID     string      `json:"requesterId"`
	Kind            AlertKind   `json:"kind"`
	BloodTypeNeeded BloodType   `json:"bloodTypeNeeded,omitempty"`
	OrganNeeded     Organ       `json:"organNeeded,omitempty"`
	Urgency         Urgency     `json:"urgency"`
	Description     string      `json:"description"`
	Location        Location    `json:"location"`
	ContactInfo     ContactInfo `json:"contactInfo"`
	Status          AlertStatus `json:"status"`
	AcceptedBy      *string     `json:"acceptedBy,omitempty"`
	AcceptedAt      *time.Time  `json:"acceptedAt,omitempty"`
	ResolvedAt      *time.Time  `json:"resolvedAt,omitempty"`
	CancelledAt     *time.Time  `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// MarshalJSON flattens the need into kind plus exactly one of
// bloodTypeNeeded or organNeeded.
func (a Alert) MarshalJSON() ([]byte, error) {
	out := alertJSON{
		ID:          a.ID,
		RequesterID: a.RequesterID,
		Urgency:     a.Urgency,
		Description: a.Description,
		Location:    a.Location,
		ContactInfo: a.Contact,
		Status:      a.Status,
		AcceptedBy:  a.AcceptedBy,
		AcceptedAt:  a.AcceptedAt,
		ResolvedAt:  a.ResolvedAt,
		CancelledAt: a.CancelledAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	switch n := a.Need.(type) {
	case BloodNeed:
		out.Kind = AlertKindBlood
		out.BloodTypeNeeded = n.BloodType
	case OrganNeed:
		out.Kind = AlertKindOrgan
		out.OrganNeeded = n.Organ
	}
	return json.Marshal(out)
}

package types

import (
	"time"

	"github.com/google/uuid"
)

// FamilyMember is one person in a household roster. Values are treated as
// immutable snapshots; use WithChanges to derive an updated copy.
type FamilyMember struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Type               MemberType       `json:"type"`
	Age                *int             `json:"age,omitempty"`
	Conditions         HealthConditions `json:"conditions"`
	Allergies          []string         `json:"allergies"`
	DietaryPreferences []string         `json:"dietary_preferences"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// MemberUpdate lists the fields to replace on a member. Nil fields are kept.
type MemberUpdate struct {
	Name               *string           `json:"name,omitempty"`
	Type               *MemberType       `json:"type,omitempty"`
	Age                *int              `json:"age,omitempty"`
	ClearAge           bool              `json:"clear_age,omitempty"`
	Conditions         *HealthConditions `json:"conditions,omitempty"`
	Allergies          *[]string         `json:"allergies,omitempty"`
	DietaryPreferences *[]string         `json:"dietary_preferences,omitempty"`
}

// WithChanges returns a copy of m with the update applied and UpdatedAt set
// to now. The receiver and its slices are left untouched.
func (m FamilyMember) WithChanges(u MemberUpdate, now time.Time) FamilyMember {
	out := m.Clone()
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Type != nil {
		out.Type = *u.Type
	}
	if u.ClearAge {
		out.Age = nil
	} else if u.Age != nil {
		age := *u.Age
		out.Age = &age
	}
	if u.Conditions != nil {
		out.Conditions = append(HealthConditions(nil), (*u.Conditions)...)
	}
	if u.Allergies != nil {
		out.Allergies = append([]string(nil), (*u.Allergies)...)
	}
	if u.DietaryPreferences != nil {
		out.DietaryPreferences = append([]string(nil), (*u.DietaryPreferences)...)
	}
	out.UpdatedAt = now
	return out
}

// Clone returns a deep copy of m.
func (m FamilyMember) Clone() FamilyMember {
	out := m
	if m.Age != nil {
		age := *m.Age
		out.Age = &age
	}
	out.Conditions = append(HealthConditions(nil), m.Conditions...)
	out.Allergies = append([]string(nil), m.Allergies...)
	out.DietaryPreferences = append([]string(nil), m.DietaryPreferences...)
	return out
}

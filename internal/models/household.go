package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famnudger/fam/backend/internal/types"
)

// Household is an account that owns a roster of family members.
type Household struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

func (h *Household) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// FamilyMember is the stored form of a roster entry. MemberType holds the
// member type's wire ordinal.
type FamilyMember struct {
	ID                 uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	HouseholdID        uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"household_id"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
	Name               string           `gorm:"size:255;not null" json:"name"`
	MemberType         int              `gorm:"not null;default:0" json:"member_type"`
	Age                *int             `json:"age"`
	Conditions         ConditionSet     `gorm:"type:jsonb;not null;default:'[]'" json:"conditions"`
	Allergies          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	DietaryPreferences JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_preferences"`
}

func (FamilyMember) TableName() string {
	return "family_members"
}

func (m *FamilyMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ToType converts the record into the engine's member snapshot.
func (m FamilyMember) ToType() types.FamilyMember {
	return types.FamilyMember{
		ID:                 m.ID,
		Name:               m.Name,
		Type:               types.MemberTypeFromOrdinal(m.MemberType),
		Age:                m.Age,
		Conditions:         append(types.HealthConditions{}, m.Conditions...),
		Allergies:          append([]string{}, m.Allergies...),
		DietaryPreferences: append([]string{}, m.DietaryPreferences...),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FamilyMemberFromType builds a record for the given household.
func FamilyMemberFromType(householdID uuid.UUID, m types.FamilyMember) FamilyMember {
	return FamilyMember{
		ID:                 m.ID,
		HouseholdID:        householdID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		Name:               m.Name,
		MemberType:         m.Type.Ordinal(),
		Age:                m.Age,
		Conditions:         ConditionSet(m.Conditions),
		Allergies:          JSONBStringArray(m.Allergies),
		DietaryPreferences: JSONBStringArray(m.DietaryPreferences),
	}
}

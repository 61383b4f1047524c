package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/models"
	"github.com/famnudger/fam/backend/internal/types"
)

// RosterService manages the family members of a household.
type RosterService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

var _ IRosterService = (*RosterService)(nil)

func NewRosterService(db *gorm.DB, log *logger.Logger) *RosterService {
	return &RosterService{db: db, log: log, now: time.Now}
}

// ListMembers returns the roster in creation order.
func (s *RosterService) ListMembers(ctx context.Context, householdID uuid.UUID) ([]types.FamilyMember, error) {
	var records []models.FamilyMember
	if err := s.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at, id").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]types.FamilyMember, 0, len(records))
	for _, r := range records {
		members = append(members, r.ToType())
	}
	return members, nil
}

func (s *RosterService) CreateMember(ctx context.Context, householdID uuid.UUID, req *types.CreateMemberRequest) (*types.FamilyMember, error) {
	now := s.now().UTC()
	member := types.FamilyMember{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(req.Name),
		Type:               types.ParseMemberType(string(req.Type)),
		Conditions:         append(types.HealthConditions{}, req.Conditions...),
		Allergies:          append([]string{}, req.Allergies...),
		DietaryPreferences: append([]string{}, req.DietaryPreferences...),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.Age != nil {
		age := *req.Age
		member.Age = &age
	}

	record := models.FamilyMemberFromType(householdID, member)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.log.Info("member created", "household_id", householdID, "member_id", member.ID, "type", member.Type)
	return &member, nil
}

// UpdateMember applies update to a copy of the stored member and saves it.
func (s *RosterService) UpdateMember(ctx context.Context, householdID, memberID uuid.UUID, update types.MemberUpdate) (*types.FamilyMember, error) {
	record, err := s.find(ctx, householdID, memberID)
	if err != nil {
		return nil, err
	}

	if update.Type != nil {
		t := types.ParseMemberType(string(*update.Type))
		update.Type = &t
	}
	updated := record.ToType().WithChanges(update, s.now().UTC())

	next := models.FamilyMemberFromType(householdID, updated)
	if err := s.db.WithContext(ctx).Save(&next).Error; err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return &updated, nil
}

func (s *RosterService) DeleteMember(ctx context.Context, householdID, memberID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND household_id = ?", memberID, householdID).
		Delete(&models.FamilyMember{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *RosterService) find(ctx context.Context, householdID, memberID uuid.UUID) (*models.FamilyMember, error) {
	var record models.FamilyMember
	err := s.db.WithContext(ctx).
		Where("id = ? AND household_id = ?", memberID, householdID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	return &record, nil
}

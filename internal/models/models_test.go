package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/famnudger/fam/backend/internal/types"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Household{}, &FamilyMember{}, &Analysis{}))
	return db
}

func TestConditionSetDropsUnknownOrdinals(t *testing.T) {
	var c ConditionSet
	require.NoError(t, c.Scan([]byte("[2, 77, 9]")))
	assert.Equal(t, ConditionSet{types.ConditionCardiac, types.ConditionGout}, c)

	require.NoError(t, c.Scan(nil))
	assert.Empty(t, c)

	v, err := ConditionSet{types.ConditionDiabetic, types.ConditionAnemia}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[0,11]", v)
}

func TestFamilyMemberPersistence(t *testing.T) {
	db := setupDB(t)
	household := Household{Name: "Rivera", Email: "rivera@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&household).Error)
	assert.NotEqual(t, uuid.Nil, household.ID)

	age := 71
	member := types.FamilyMember{
		ID:         uuid.New(),
		Name:       "Abuela",
		Type:       types.MemberSenior,
		Age:        &age,
		Conditions: types.HealthConditions{types.ConditionHypertensive, types.ConditionOsteoporosis},
		Allergies:  []string{"Shellfish"},
	}
	record := FamilyMemberFromType(household.ID, member)
	require.NoError(t, db.Create(&record).Error)

	var loaded FamilyMember
	require.NoError(t, db.First(&loaded, "id = ?", member.ID).Error)
	got := loaded.ToType()
	assert.Equal(t, member.Name, got.Name)
	assert.Equal(t, types.MemberSenior, got.Type)
	assert.Equal(t, 71, *got.Age)
	assert.Equal(t, member.Conditions, got.Conditions)
	assert.Equal(t, []string{"Shellfish"}, got.Allergies)
	assert.Empty(t, got.DietaryPreferences)
}

func TestStaleMemberTypeLoadsAsAdult(t *testing.T) {
	db := setupDB(t)
	record := FamilyMember{HouseholdID: uuid.New(), Name: "Old", MemberType: 42}
	require.NoError(t, db.Create(&record).Error)

	var loaded FamilyMember
	require.NoError(t, db.First(&loaded, "id = ?", record.ID).Error)
	assert.Equal(t, types.MemberAdult, loaded.ToType().Type)
}

func TestAnalysisRecordRoundTrip(t *testing.T) {
	db := setupDB(t)
	result := types.AnalysisResult{
		ProductID:    "4006381333931",
		OverallScore: 12.5,
		OverallRisk:  types.RiskCritical,
		Flags:        []types.IngredientFlag{},
		MemberRisks:  []types.MemberRisk{},
		AnalyzedAt:   time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Source:       types.SourceLocalRegistry,
	}
	vec := make([]float32, EmbeddingDimensions)
	vec[3] = 1
	record, err := NewAnalysis(uuid.New(), "Gummy Bears", result, pgvector.NewVector(vec))
	require.NoError(t, err)
	require.NoError(t, db.Create(record).Error)

	var loaded Analysis
	require.NoError(t, db.First(&loaded, "id = ?", record.ID).Error)
	assert.Equal(t, types.RiskCritical.Ordinal(), loaded.OverallRisk)
	assert.Equal(t, "Gummy Bears", loaded.ProductName)
	assert.Equal(t, vec, loaded.Embedding.Slice())

	decoded, err := loaded.Decode()
	require.NoError(t, err)
	assert.Equal(t, result.OverallRisk, decoded.OverallRisk)
	assert.Equal(t, result.ProductID, decoded.ProductID)
	assert.True(t, result.AnalyzedAt.Equal(decoded.AnalyzedAt))
}

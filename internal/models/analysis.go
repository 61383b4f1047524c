package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/famnudger/fam/backend/internal/types"
)

// EmbeddingDimensions is the width of the ingredient-profile vector column.
const EmbeddingDimensions = 64

// Analysis is a persisted AnalysisResult. The full result is kept as JSON;
// the score columns are duplicated for querying.
type Analysis struct {
	ID           uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	HouseholdID  uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"household_id"`
	CreatedAt    time.Time       `json:"created_at"`
	ProductID    string          `gorm:"size:64;index" json:"product_id"`
	ProductName  string          `gorm:"size:255" json:"product_name"`
	OverallScore float64         `gorm:"type:float;index" json:"overall_score"`
	OverallRisk  int             `gorm:"not null" json:"overall_risk"`
	Source       string          `gorm:"size:32" json:"source"`
	Result       datatypes.JSON  `gorm:"not null" json:"result"`
	Embedding    pgvector.Vector `gorm:"type:vector(64)" json:"-"`
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewAnalysis builds a record from a result.
func NewAnalysis(householdID uuid.UUID, productName string, result types.AnalysisResult, embedding pgvector.Vector) (*Analysis, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis result: %w", err)
	}
	return &Analysis{
		HouseholdID:  householdID,
		ProductID:    result.ProductID,
		ProductName:  productName,
		OverallScore: result.OverallScore,
		OverallRisk:  result.OverallRisk.Ordinal(),
		Source:       string(result.Source),
		Result:       datatypes.JSON(payload),
		Embedding:    embedding,
	}, nil
}

// Decode returns the stored result.
func (a *Analysis) Decode() (types.AnalysisResult, error) {
	var result types.AnalysisResult
	if err := json.Unmarshal(a.Result, &result); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("failed to decode analysis %s: %w", a.ID, err)
	}
	return result, nil
}

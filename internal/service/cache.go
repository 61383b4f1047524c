package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/types"
)

const cacheKeyPrefix = "fam:analysis:"

// RedisAnalysisCache keeps analysis responses in redis for a fixed TTL.
type RedisAnalysisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ AnalysisCache = (*RedisAnalysisCache)(nil)

func NewRedisAnalysisCache(client redis.Cmdable, ttl time.Duration) *RedisAnalysisCache {
	return &RedisAnalysisCache{client: client, ttl: ttl}
}

func (c *RedisAnalysisCache) Get(ctx context.Context, key string) (*types.AnalysisResponse, bool, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var resp types.AnalysisResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &resp, true, nil
}

func (c *RedisAnalysisCache) Set(ctx context.Context, key string, resp *types.AnalysisResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

type cacheMember struct {
	ID         uuid.UUID        `json:"id"`
	Type       types.MemberType `json:"t"`
	Conditions []string         `json:"c"`
	Allergies  []string         `json:"a"`
	Name       string           `json:"n"`
}

// CacheKey hashes everything that can change the result of an analysis.
// Condition and allergy order do not matter; roster order does, since it
// orders the member risks. Inputs that cannot be encoded have no key.
func CacheKey(householdID uuid.UUID, in engine.AnalysisInput) (string, error) {
	members := make([]cacheMember, 0, len(in.Members))
	for _, m := range in.Members {
		conds := m.Conditions.Strings()
		sort.Strings(conds)
		allergies := make([]string, 0, len(m.Allergies))
		for _, a := range m.Allergies {
			allergies = append(allergies, strings.ToLower(strings.TrimSpace(a)))
		}
		sort.Strings(allergies)
		members = append(members, cacheMember{ID: m.ID, Type: m.Type, Conditions: conds, Allergies: allergies, Name: m.Name})
	}

	payload, err := json.Marshal(struct {
		Household   uuid.UUID             `json:"h"`
		ProductID   string                `json:"p"`
		Ingredients []string              `json:"i"`
		Members     []cacheMember         `json:"m"`
		Estimates   engine.Estimates      `json:"e"`
		Nutrition   *types.NutritionFacts `json:"n"`
		Price       *float64              `json:"$"`
	}{householdID, in.ProductID, in.Ingredients, members, in.Estimates, in.Nutrition, in.Price})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

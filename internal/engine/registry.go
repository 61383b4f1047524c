package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/famnudger/fam/backend/internal/types"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// Category groups registry entries by the kind of concern they raise.
type Category string

const (
	CategorySweetener    Category = "sweetener"
	CategoryDye          Category = "dye"
	CategoryPreservative Category = "preservative"
	CategoryFat          Category = "fat"
	CategorySodium       Category = "sodium"
	CategorySugar        Category = "sugar"
	CategoryStimulant    Category = "stimulant"
	CategoryOther        Category = "other"
)

var knownCategories = map[Category]bool{
	CategorySweetener:    true,
	CategoryDye:          true,
	CategoryPreservative: true,
	CategoryFat:          true,
	CategorySodium:       true,
	CategorySugar:        true,
	CategoryStimulant:    true,
	CategoryOther:        true,
}

// Tier is the baseline risk of a registry entry before escalation.
type Tier string

const (
	TierNone     Tier = "none"
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

var tierRank = map[Tier]int{
	TierNone:     0,
	TierLow:      1,
	TierModerate: 2,
	TierHigh:     3,
}

// Rank orders tiers from none (0) to high (3).
func (t Tier) Rank() int {
	return tierRank[t]
}

// RiskLevel maps a baseline tier onto the five-level flag scale.
func (t Tier) RiskLevel() types.RiskLevel {
	switch t {
	case TierLow:
		return types.RiskLow
	case TierModerate:
		return types.RiskMedium
	case TierHigh:
		return types.RiskHigh
	default:
		return types.RiskSafe
	}
}

// RegistryEntry is one known ingredient of concern.
type RegistryEntry struct {
	Name         string   `yaml:"name"`
	MatchTokens  []string `yaml:"match"`
	Category     Category `yaml:"category"`
	BaseTier     Tier     `yaml:"tier"`
	AffectedTags []string `yaml:"affects"`
	EvidenceURL  string   `yaml:"evidence"`

	// patterns holds MatchTokens split into normalized words.
	patterns [][]string
}

type registryFile struct {
	Version int             `yaml:"version"`
	Entries []RegistryEntry `yaml:"entries"`
}

// Registry is the read-only table of known ingredients. It is safe for
// concurrent use once loaded.
type Registry struct {
	entries []RegistryEntry
}

// DefaultRegistry loads the registry table compiled into the binary.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(defaultRegistryYAML)
}

// LoadRegistry parses and validates a registry table in YAML form.
func LoadRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if len(file.Entries) == 0 {
		return nil, errors.New("registry has no entries")
	}

	seen := make(map[string]bool, len(file.Entries))
	entries := make([]RegistryEntry, 0, len(file.Entries))
	for i, e := range file.Entries {
		e.Name = strings.ToLower(strings.TrimSpace(e.Name))
		if e.Name == "" {
			return nil, fmt.Errorf("registry entry %d has no name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate registry entry %q", e.Name)
		}
		seen[e.Name] = true

		if !knownCategories[e.Category] {
			return nil, fmt.Errorf("registry entry %q: unknown category %q", e.Name, e.Category)
		}
		if _, ok := tierRank[e.BaseTier]; !ok {
			return nil, fmt.Errorf("registry entry %q: unknown tier %q", e.Name, e.BaseTier)
		}
		for _, tag := range e.AffectedTags {
			if !types.IsMemberType(tag) && !types.IsHealthCondition(tag) {
				return nil, fmt.Errorf("registry entry %q: unknown profile tag %q", e.Name, tag)
			}
		}

		if len(e.MatchTokens) == 0 {
			e.MatchTokens = []string{e.Name}
		}
		for _, tok := range e.MatchTokens {
			words := normalizeWords(tok)
			if len(words) == 0 {
				return nil, fmt.Errorf("registry entry %q: empty match token", e.Name)
			}
			e.patterns = append(e.patterns, words)
		}
		entries = append(entries, e)
	}

	return &Registry{entries: entries}, nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the registry's entries.
func (r *Registry) Entries() []RegistryEntry {
	out := make([]RegistryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the entry with the given canonical name.
func (r *Registry) Lookup(name string) (RegistryEntry, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return RegistryEntry{}, false
}

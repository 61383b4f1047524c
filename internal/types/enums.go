package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Enum values travel over the wire as integer ordinals. The ordinal of each
// value is fixed by the tables below, never by declaration order. New values
// are appended to the end of a table; existing positions must not move.

// ordinalTable maps an in-memory enum value to its wire ordinal and back.
type ordinalTable[T ~string] []T

func (t ordinalTable[T]) ordinal(v T) (int, bool) {
	for i, candidate := range t {
		if candidate == v {
			return i, true
		}
	}
	return 0, false
}

func (t ordinalTable[T]) value(i int) (T, bool) {
	if i < 0 || i >= len(t) {
		var zero T
		return zero, false
	}
	return t[i], true
}

func (t ordinalTable[T]) byName(name string) (T, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, candidate := range t {
		if string(candidate) == name {
			return candidate, true
		}
	}
	var zero T
	return zero, false
}

// decode accepts either an integer ordinal or the value's name.
func (t ordinalTable[T]) decode(data []byte) (T, bool, error) {
	var zero T
	if string(data) == "null" {
		return zero, false, nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		v, ok := t.value(n)
		return v, ok, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return zero, false, fmt.Errorf("enum must be an ordinal or a name: %w", err)
	}
	v, ok := t.byName(s)
	return v, ok, nil
}

// RiskLevel is the five-level severity scale used for flags, members and products.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskLevelOrdinals = ordinalTable[RiskLevel]{
	RiskSafe,     // 0
	RiskLow,      // 1
	RiskMedium,   // 2
	RiskHigh,     // 3
	RiskCritical, // 4
}

var riskLevelRank = map[RiskLevel]int{
	RiskSafe:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Rank orders risk levels from Safe (0) to Critical (4). Unknown levels rank as Safe.
func (r RiskLevel) Rank() int {
	return riskLevelRank[r]
}

// AtLeast reports whether r is as severe as other or worse.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Rank() >= other.Rank()
}

// MaxRisk returns the more severe of the given levels, Safe when none are given.
func MaxRisk(levels ...RiskLevel) RiskLevel {
	worst := RiskSafe
	for _, l := range levels {
		if l.Rank() > worst.Rank() {
			worst = l
		}
	}
	return worst
}

// Ordinal returns the fixed wire ordinal of r, or -1 if r is unknown.
func (r RiskLevel) Ordinal() int {
	if n, ok := riskLevelOrdinals.ordinal(r); ok {
		return n
	}
	return -1
}

// RiskLevelFromOrdinal is the inverse of Ordinal.
func RiskLevelFromOrdinal(n int) (RiskLevel, bool) {
	return riskLevelOrdinals.value(n)
}

func (r RiskLevel) MarshalJSON() ([]byte, error) {
	n, ok := riskLevelOrdinals.ordinal(r)
	if !ok {
		return nil, fmt.Errorf("unknown risk level %q", string(r))
	}
	return json.Marshal(n)
}

// UnmarshalJSON rejects unknown ordinals; risk levels are only ever produced
// by this service so an unknown value means the payload is corrupt.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	v, ok, err := riskLevelOrdinals.decode(data)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown risk level %s", string(data))
	}
	*r = v
	return nil
}

// MemberType is the kind of household member.
type MemberType string

const (
	MemberAdult    MemberType = "adult"
	MemberChild    MemberType = "child"
	MemberToddler  MemberType = "toddler"
	MemberSenior   MemberType = "senior"
	MemberPregnant MemberType = "pregnant"
)

var memberTypeOrdinals = ordinalTable[MemberType]{
	MemberAdult,    // 0
	MemberChild,    // 1
	MemberToddler,  // 2
	MemberSenior,   // 3
	MemberPregnant, // 4
}

// ParseMemberType maps a name onto a MemberType, falling back to adult.
func ParseMemberType(name string) MemberType {
	if v, ok := memberTypeOrdinals.byName(name); ok {
		return v
	}
	return MemberAdult
}

// IsMemberType reports whether tag names one of the known member types.
func IsMemberType(tag string) bool {
	_, ok := memberTypeOrdinals.ordinal(MemberType(tag))
	return ok
}

// Valid reports whether m is a known member type.
func (m MemberType) Valid() bool {
	return IsMemberType(string(m))
}

// Ordinal returns the fixed wire ordinal of m. Unknown types encode as adult.
func (m MemberType) Ordinal() int {
	if n, ok := memberTypeOrdinals.ordinal(m); ok {
		return n
	}
	n, _ := memberTypeOrdinals.ordinal(MemberAdult)
	return n
}

// MemberTypeFromOrdinal decodes a stored ordinal, falling back to adult.
func MemberTypeFromOrdinal(n int) MemberType {
	if v, ok := memberTypeOrdinals.value(n); ok {
		return v
	}
	return MemberAdult
}

func (m MemberType) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Ordinal())
}

// UnmarshalJSON maps unknown values to adult so stale roster records still load.
func (m *MemberType) UnmarshalJSON(data []byte) error {
	v, ok, err := memberTypeOrdinals.decode(data)
	if err != nil {
		return err
	}
	if !ok {
		v = MemberAdult
	}
	*m = v
	return nil
}

// HealthCondition is a medical condition that changes which ingredients matter.
type HealthCondition string

const (
	ConditionDiabetic          HealthCondition = "diabetic"
	ConditionHypertensive      HealthCondition = "hypertensive"
	ConditionCardiac           HealthCondition = "cardiac"
	ConditionCeliac            HealthCondition = "celiac"
	ConditionLactoseIntolerant HealthCondition = "lactose-intolerant"
	ConditionGlutenSensitive   HealthCondition = "gluten-sensitive"
	ConditionKidneyDisease     HealthCondition = "kidney-disease"
	ConditionLiverDisease      HealthCondition = "liver-disease"
	ConditionThyroid           HealthCondition = "thyroid"
	ConditionGout              HealthCondition = "gout"
	ConditionObesity           HealthCondition = "obesity"
	ConditionAnemia            HealthCondition = "anemia"
	ConditionOsteoporosis      HealthCondition = "osteoporosis"
)

var healthConditionOrdinals = ordinalTable[HealthCondition]{
	ConditionDiabetic,          // 0
	ConditionHypertensive,      // 1
	ConditionCardiac,           // 2
	ConditionCeliac,            // 3
	ConditionLactoseIntolerant, // 4
	ConditionGlutenSensitive,   // 5
	ConditionKidneyDisease,     // 6
	ConditionLiverDisease,      // 7
	ConditionThyroid,           // 8
	ConditionGout,              // 9
	ConditionObesity,           // 10
	ConditionAnemia,            // 11
	ConditionOsteoporosis,      // 12
}

// IsHealthCondition reports whether tag names one of the known conditions.
func IsHealthCondition(tag string) bool {
	_, ok := healthConditionOrdinals.ordinal(HealthCondition(tag))
	return ok
}

// ParseHealthCondition returns the condition named by s and whether it is known.
func ParseHealthCondition(s string) (HealthCondition, bool) {
	return healthConditionOrdinals.byName(s)
}

func (c HealthCondition) MarshalJSON() ([]byte, error) {
	n, ok := healthConditionOrdinals.ordinal(c)
	if !ok {
		return nil, fmt.Errorf("unknown health condition %q", string(c))
	}
	return json.Marshal(n)
}

// UnmarshalJSON leaves c empty for unknown values; HealthConditions drops them.
func (c *HealthCondition) UnmarshalJSON(data []byte) error {
	v, ok, err := healthConditionOrdinals.decode(data)
	if err != nil {
		return err
	}
	if !ok {
		v = ""
	}
	*c = v
	return nil
}

// HealthConditions is a set of conditions. Decoding silently drops values
// that this build does not know about.
type HealthConditions []HealthCondition

func (hc *HealthConditions) UnmarshalJSON(data []byte) error {
	var raw []HealthCondition
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(HealthConditions, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			out = append(out, c)
		}
	}
	*hc = out
	return nil
}

// Contains reports whether the set includes c.
func (hc HealthConditions) Contains(c HealthCondition) bool {
	for _, have := range hc {
		if have == c {
			return true
		}
	}
	return false
}

// Strings returns the condition names.
func (hc HealthConditions) Strings() []string {
	out := make([]string, len(hc))
	for i, c := range hc {
		out[i] = string(c)
	}
	return out
}

// ParseHealthConditions converts names into conditions, dropping unknown names.
func ParseHealthConditions(names []string) HealthConditions {
	out := make(HealthConditions, 0, len(names))
	for _, n := range names {
		if c, ok := ParseHealthCondition(n); ok {
			out = append(out, c)
		}
	}
	return out
}

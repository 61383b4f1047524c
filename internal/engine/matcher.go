package engine

import (
	"strings"
	"unicode"
)

// Match links one input ingredient to one registry entry it contains.
type Match struct {
	// Index is the position of the ingredient in the input list. Repeated
	// ingredient strings each produce their own matches.
	Index      int
	Ingredient string
	Entry      *RegistryEntry
}

// Match finds every registry entry named by each ingredient. An ingredient
// may produce several matches; ingredients with no match produce none.
func (r *Registry) Match(ingredients []string) []Match {
	var matches []Match
	for i, ingredient := range ingredients {
		words := NormalizeIngredient(ingredient)
		if len(words) == 0 {
			continue
		}
		for j := range r.entries {
			entry := &r.entries[j]
			if entry.matches(words) {
				matches = append(matches, Match{Index: i, Ingredient: ingredient, Entry: entry})
			}
		}
	}
	return matches
}

func (e *RegistryEntry) matches(words []string) bool {
	for _, pattern := range e.patterns {
		if containsRun(words, pattern) {
			return true
		}
	}
	return false
}

// NormalizeIngredient lowercases s, drops parenthetical remarks and splits
// the rest into words.
func NormalizeIngredient(s string) []string {
	return normalizeWords(stripParentheticals(s))
}

// normalizeWords lowercases s and splits it on anything that is not a
// letter or digit.
func normalizeWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stripParentheticals removes text inside () and [] including nested
// groups. An unclosed group runs to the end of the string.
func stripParentheticals(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
			b.WriteRune(' ')
		case ')', ']':
			if depth > 0 {
				depth--
			}
			b.WriteRune(' ')
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// containsRun reports whether pattern occurs in words as a contiguous run.
func containsRun(words, pattern []string) bool {
	if len(pattern) == 0 || len(pattern) > len(words) {
		return false
	}
	for start := 0; start+len(pattern) <= len(words); start++ {
		found := true
		for k, p := range pattern {
			if words[start+k] != p {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}

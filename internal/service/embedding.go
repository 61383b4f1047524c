package service

import (
	"hash/fnv"
	"math"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/models"
)

// IngredientEmbedding hashes an ingredient list into a fixed-width, L2
// normalized bag-of-words vector. Whole ingredients weigh twice as much as
// their individual words so "corn syrup" and "corn, syrup" stay apart.
func IngredientEmbedding(ingredients []string) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDimensions)
	for _, ingredient := range ingredients {
		words := engine.NormalizeIngredient(ingredient)
		if len(words) == 0 {
			continue
		}
		vec[bucket(strings.Join(words, " "))] += 2
		for _, w := range words {
			vec[bucket(w)]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}

func bucket(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(models.EmbeddingDimensions))
}

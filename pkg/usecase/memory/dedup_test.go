package memory_test

import (
	"testing"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func mem(id int64, content string, importance float64, embedding []float32) *model.Memory {
	return &model.Memory{
		Data: model.MemoryData{
			ID:         model.MemoryID(id),
			Content:    content,
			Importance: importance,
			Category:   "general",
			Topics:     []string{},
		},
		Embedding: embedding,
	}
}

func contents(memories []*model.Memory) []string {
	out := make([]string, 0, len(memories))
	for _, m := range memories {
		out = append(out, m.Data.Content)
	}
	return out
}

func TestDeduplicateKeepsHigherImportance(t *testing.T) {
	// Cosine similarity of the two coffee vectors is ~0.9
	memories := []*model.Memory{
		mem(1, "likes coffee", 0.6, []float32{0.9, 0.43, 0, 0}),
		mem(2, "loves coffee", 0.9, []float32{1, 0, 0, 0}),
		mem(3, "has a cat", 0.5, []float32{0, 0, 1, 0}),
	}

	kept, err := memory.Deduplicate(memories)
	gt.NoError(t, err)
	gt.Equal(t, contents(kept), []string{"loves coffee", "has a cat"})
}

func TestDeduplicateTieBreakKeepsEarlier(t *testing.T) {
	memories := []*model.Memory{
		mem(1, "first", 0.5, []float32{1, 0, 0}),
		mem(2, "second", 0.5, []float32{1, 0, 0}),
	}

	kept, err := memory.Deduplicate(memories)
	gt.NoError(t, err)
	gt.Equal(t, contents(kept), []string{"first"})
}

func TestDeduplicateBelowThreshold(t *testing.T) {
	// Orthogonal vectors: nothing is a duplicate
	memories := []*model.Memory{
		mem(1, "a", 0.1, []float32{1, 0, 0}),
		mem(2, "b", 0.2, []float32{0, 1, 0}),
		mem(3, "c", 0.3, []float32{0, 0, 1}),
	}

	kept, err := memory.Deduplicate(memories)
	gt.NoError(t, err)
	gt.A(t, kept).Length(3)
}

func TestDeduplicateRemovedStaysRemoved(t *testing.T) {
	// All three are near-duplicates. The first loses to the second,
	// then the second also removes the third.
	memories := []*model.Memory{
		mem(1, "low", 0.5, []float32{1, 0}),
		mem(2, "high", 0.9, []float32{1, 0}),
		mem(3, "mid", 0.7, []float32{1, 0}),
	}

	kept, err := memory.Deduplicate(memories)
	gt.NoError(t, err)
	gt.Equal(t, contents(kept), []string{"high"})
}

func TestDeduplicateIdempotent(t *testing.T) {
	memories := []*model.Memory{
		mem(1, "likes coffee", 0.6, []float32{0.9, 0.43, 0, 0}),
		mem(2, "loves coffee", 0.9, []float32{1, 0, 0, 0}),
		mem(3, "has a cat", 0.5, []float32{0, 0, 1, 0}),
		mem(4, "lives in Paris", 0.8, []float32{0, 0, 0, 1}),
	}

	once, err := memory.Deduplicate(memories)
	gt.NoError(t, err)

	twice, err := memory.Deduplicate(once)
	gt.NoError(t, err)
	gt.Equal(t, contents(twice), contents(once))
}

func TestDeduplicateSmallInput(t *testing.T) {
	kept, err := memory.Deduplicate(nil)
	gt.NoError(t, err)
	gt.A(t, kept).Length(0)

	single := []*model.Memory{mem(1, "only", 0.5, []float32{1, 0})}
	kept, err = memory.Deduplicate(single)
	gt.NoError(t, err)
	gt.Equal(t, contents(kept), []string{"only"})
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	memories := []*model.Memory{
		mem(1, "a", 0.5, []float32{1, 0, 0, 0}),
		mem(2, "b", 0.5, []float32{0, 1, 0, 0}),
		mem(3, "a-dup", 0.4, []float32{1, 0, 0, 0}),
		mem(4, "c", 0.5, []float32{0, 0, 1, 0}),
		mem(5, "d", 0.5, []float32{0, 0, 0, 1}),
	}

	kept, err := memory.Deduplicate(memories)
	gt.NoError(t, err)
	gt.Equal(t, contents(kept), []string{"a", "b", "c", "d"})
}

package memory

import (
	"time"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/vector"
)

const (
	// dedupInterval is the minimum time between deduplication passes
	dedupInterval = 24 * time.Hour
	// dedupMinRecords is the collection size a deduplication pass
	// requires; the trigger is size > dedupMinRecords
	dedupMinRecords = 10
	// similarityThreshold marks two memories as near-duplicates
	similarityThreshold = 0.75
	// neighborLimit bounds how many nearest neighbors each memory is
	// compared against
	neighborLimit = 10
)

// Deduplicate removes near-duplicate memories and returns the
// survivors in their original relative order. It is a pure function of
// the input slice; persisting the result and updating the collection
// timestamps is the caller's responsibility.
//
// One similarity index is built over all N records, then each record
// is compared against its min(neighborLimit, N) nearest neighbors, so
// the pass runs in O(N log N) rather than O(N^2). For each neighbor
// pair above similarityThreshold the record with higher importance
// survives; on equal importance the earlier record (by insertion
// order) survives. A removed record stays removed and is skipped in
// later comparisons.
func Deduplicate(memories []*model.Memory) ([]*model.Memory, error) {
	if len(memories) <= 1 {
		return memories, nil
	}

	embeddings := make([][]float32, len(memories))
	for i, m := range memories {
		embeddings[i] = m.Embedding
	}

	idx, err := vector.New(embeddings)
	if err != nil {
		return nil, err
	}

	k := neighborLimit
	if k > len(memories) {
		k = len(memories)
	}

	removed := make([]bool, len(memories))

	for i, m := range memories {
		if removed[i] {
			continue
		}

		hits, err := idx.Search(m.Embedding, k)
		if err != nil {
			return nil, err
		}

		for _, hit := range hits {
			j := hit.Index
			if j == i || hit.Score < similarityThreshold || removed[j] {
				continue
			}

			if memories[i].Data.Importance >= memories[j].Data.Importance {
				removed[j] = true
			} else {
				removed[i] = true
				break
			}
		}
	}

	kept := make([]*model.Memory, 0, len(memories))
	for i, m := range memories {
		if !removed[i] {
			kept = append(kept, m)
		}
	}

	return kept, nil
}

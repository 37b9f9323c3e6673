package memory

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/engram/pkg/vector"
	"github.com/m-mizutani/goerr/v2"
)

// Search returns the topK stored memories most similar to the query,
// ordered by descending cosine similarity. An empty collection returns
// an empty result without error. If the collection is due for
// deduplication the reduced collection is persisted before searching.
// Results carry no embeddings.
func (u *UseCase) Search(ctx context.Context, userKey, query string, topK int) ([]*model.MemoryData, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	unlock := u.lockUser(userKey)
	defer unlock()

	storagePath := collectionPath(userKey)
	col := u.loadCollection(ctx, storagePath)

	if len(col.Memories) == 0 {
		return nil, nil
	}

	if u.needsDeduplication(col) {
		before := len(col.Memories)
		deduped, err := Deduplicate(col.Memories)
		if err != nil {
			return nil, err
		}
		col.Memories = deduped

		t := u.now().UTC()
		col.LastDeduplicatedAt = &t

		if err := u.saveCollection(ctx, storagePath, col); err != nil {
			return nil, err
		}

		logging.From(ctx).Info("deduplicated memory collection",
			"before", before, "after", len(col.Memories))
	}

	queryEmbedding, err := u.gemini.Embedding(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}

	embeddings := make([][]float32, len(col.Memories))
	for i, m := range col.Memories {
		embeddings[i] = m.Embedding
	}

	idx, err := vector.New(embeddings)
	if err != nil {
		return nil, err
	}

	hits, err := idx.Search(queryEmbedding, topK)
	if err != nil {
		return nil, err
	}

	results := make([]*model.MemoryData, 0, len(hits))
	for _, hit := range hits {
		data := col.Memories[hit.Index].Data
		results = append(results, &data)
	}

	return results, nil
}

// needsDeduplication reports whether the collection is due for a
// deduplication pass: more than dedupMinRecords memories and either
// never deduplicated or more than dedupInterval since the last pass.
func (u *UseCase) needsDeduplication(col *model.MemoryCollection) bool {
	if len(col.Memories) <= dedupMinRecords {
		return false
	}
	if col.LastDeduplicatedAt == nil {
		return true
	}
	return u.now().Sub(*col.LastDeduplicatedAt) > dedupInterval
}

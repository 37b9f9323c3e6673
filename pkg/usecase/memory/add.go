package memory

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// AddInput is the payload of a store request
type AddInput struct {
	Content    string
	Importance float64
	Category   string
	Topics     []string
}

// Add stores a new memory for the user: it computes the embedding for
// the content, appends the record to the collection and persists it.
// Add never triggers deduplication.
func (u *UseCase) Add(ctx context.Context, userKey string, input AddInput) (string, error) {
	data := model.MemoryData{
		ID:         model.NewMemoryID(u.now()),
		Content:    input.Content,
		Importance: input.Importance,
		Category:   input.Category,
		Topics:     input.Topics,
	}
	if data.Topics == nil {
		data.Topics = []string{}
	}

	if err := data.Validate(); err != nil {
		return "", err
	}

	if err := u.gate.Check(ctx, &data); err != nil {
		return "", err
	}

	unlock := u.lockUser(userKey)
	defer unlock()

	storagePath := collectionPath(userKey)
	col := u.loadCollection(ctx, storagePath)

	embedding, err := u.gemini.Embedding(ctx, input.Content)
	if err != nil {
		return "", goerr.Wrap(err, "failed to embed memory content")
	}

	// All embeddings in one collection share the same dimension
	if dim := col.Dimension(); dim > 0 && len(embedding) != dim {
		return "", goerr.New("embedding dimension differs from collection",
			goerr.V("collection", dim),
			goerr.V("embedding", len(embedding)))
	}

	col.Memories = append(col.Memories, &model.Memory{
		Data:      data,
		Embedding: embedding,
	})

	if err := u.saveCollection(ctx, storagePath, col); err != nil {
		return "", err
	}

	logging.From(ctx).Debug("stored memory",
		"id", data.ID, "category", data.Category, "total", len(col.Memories))

	return fmt.Sprintf("Memory stored successfully: '%s'", input.Content), nil
}

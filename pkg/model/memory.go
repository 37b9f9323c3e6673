package model

import (
	"encoding/json"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// MemoryID is the identifier of a stored memory. It is the creation
// instant as seconds since epoch. Uniqueness is best-effort: collisions
// are accepted as practically impossible at human input rates.
type MemoryID int64

// NewMemoryID generates a MemoryID from the given creation instant
func NewMemoryID(t time.Time) MemoryID {
	return MemoryID(t.UTC().Unix())
}

// MemoryData is the visible payload of a memory. It is what search and
// list operations return; the embedding never leaves the store.
type MemoryData struct {
	ID         MemoryID `json:"id"`
	Content    string   `json:"content"`
	Importance float64  `json:"importance"`
	Category   string   `json:"category"`
	Topics     []string `json:"topics"`
}

// Validate checks if the memory data is valid
func (d *MemoryData) Validate() error {
	if d.Content == "" {
		return goerr.New("memory content is empty")
	}
	if d.Importance < 0 || d.Importance > 1 {
		return goerr.New("importance must be in [0, 1]", goerr.V("importance", d.Importance))
	}
	return nil
}

// Memory couples a MemoryData with its embedding vector. The embedding
// is computed once from Content at creation time and never recomputed.
type Memory struct {
	Data      MemoryData `json:"data"`
	Embedding []float32  `json:"embedding"`
}

// MemoryCollection is the unit of persistence and caching: one
// collection per user namespace. Insertion order of Memories is
// meaningful, it is the deduplication tie-break.
type MemoryCollection struct {
	Memories           []*Memory  `json:"memories"`
	UpdatedAt          time.Time  `json:"updated_at"`
	LastDeduplicatedAt *time.Time `json:"last_deduplicated_at,omitempty"`
}

// NewMemoryCollection creates an empty collection
func NewMemoryCollection(now time.Time) *MemoryCollection {
	return &MemoryCollection{
		Memories:  []*Memory{},
		UpdatedAt: now.UTC(),
	}
}

// Dimension returns the embedding dimension of the collection, or 0 if
// the collection is empty. All embeddings in one collection share the
// same dimension.
func (c *MemoryCollection) Dimension() int {
	if len(c.Memories) == 0 {
		return 0
	}
	return len(c.Memories[0].Embedding)
}

// Encode writes the collection as compact JSON. Each record is roughly
// 6-8KB dominated by the embedding vector, so no pretty-printing.
func (c *MemoryCollection) Encode(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(c); err != nil {
		return goerr.Wrap(err, "failed to encode memory collection")
	}
	return nil
}

// DecodeMemoryCollection reads a collection from its JSON representation
func DecodeMemoryCollection(r io.Reader) (*MemoryCollection, error) {
	var c MemoryCollection
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory collection")
	}
	return &c, nil
}

package model_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestMemoryDataValidate(t *testing.T) {
	testCases := []struct {
		name    string
		data    model.MemoryData
		wantErr bool
	}{
		{
			name: "valid",
			data: model.MemoryData{Content: "likes coffee", Importance: 0.5, Category: "preferences"},
		},
		{
			name: "valid boundary importance",
			data: model.MemoryData{Content: "lives in Paris", Importance: 1.0},
		},
		{
			name:    "empty content",
			data:    model.MemoryData{Content: "", Importance: 0.5},
			wantErr: true,
		},
		{
			name:    "importance above range",
			data:    model.MemoryData{Content: "x", Importance: 1.5},
			wantErr: true,
		},
		{
			name:    "importance below range",
			data:    model.MemoryData{Content: "x", Importance: -0.1},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.data.Validate()
			if tc.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestNewMemoryID(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	gt.Equal(t, model.NewMemoryID(at), model.MemoryID(at.Unix()))
}

func TestCollectionRoundTrip(t *testing.T) {
	dedupAt := time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)
	col := &model.MemoryCollection{
		Memories: []*model.Memory{
			{
				Data: model.MemoryData{
					ID:         1748700000,
					Content:    "I live in Paris",
					Importance: 0.8,
					Category:   "personal_info",
					Topics:     []string{"location", "home"},
				},
				Embedding: []float32{0.1, 0.2, 0.3},
			},
			{
				Data: model.MemoryData{
					ID:         1748700060,
					Content:    "likes coffee",
					Importance: 0.6,
					Category:   "preferences",
					Topics:     []string{},
				},
				Embedding: []float32{0.4, 0.5, 0.6},
			},
		},
		UpdatedAt:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LastDeduplicatedAt: &dedupAt,
	}

	buf := &bytes.Buffer{}
	gt.NoError(t, col.Encode(buf))

	decoded, err := model.DecodeMemoryCollection(buf)
	gt.NoError(t, err)
	gt.Equal(t, decoded, col)
}

func TestCollectionEncodeCompact(t *testing.T) {
	col := model.NewMemoryCollection(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	col.Memories = append(col.Memories, &model.Memory{
		Data:      model.MemoryData{ID: 1, Content: "x", Topics: []string{}},
		Embedding: []float32{1, 0},
	})

	buf := &bytes.Buffer{}
	gt.NoError(t, col.Encode(buf))

	// Compact JSON: a single line, no indentation
	body := strings.TrimSuffix(buf.String(), "\n")
	gt.S(t, body).NotContains("\n")
	gt.S(t, body).NotContains("  ")
	gt.S(t, body).Contains(`"memories":[{"data":`)
	gt.S(t, body).NotContains("last_deduplicated_at")
}

func TestCollectionDimension(t *testing.T) {
	col := model.NewMemoryCollection(time.Now())
	gt.Equal(t, col.Dimension(), 0)

	col.Memories = append(col.Memories, &model.Memory{
		Data:      model.MemoryData{ID: 1, Content: "x"},
		Embedding: make([]float32, 768),
	})
	gt.Equal(t, col.Dimension(), 768)
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := model.DecodeMemoryCollection(strings.NewReader("not json"))
	gt.Error(t, err)
}

// Package scanner orchestrates prop scans: scope resolution, per-tuple
// aggregation, analytics and estimation, batch caching and broadcasting.
package scanner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/courtside/internal/models"
)

// Batch is the cached unit: every prediction produced by one scan of one
// scope, immutable for the cache window.
type Batch struct {
	ID          uuid.UUID                 `json:"id"`
	Scope       string                    `json:"scope"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Records     []models.PredictionRecord `json:"records"`
}

// Encode serializes the batch for the cache
func (b Batch) Encode() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction batch: %w", err)
	}
	return data, nil
}

// DecodeBatch deserializes a cached batch
func DecodeBatch(data []byte) (Batch, error) {
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return Batch{}, fmt.Errorf("failed to decode prediction batch: %w", err)
	}
	return batch, nil
}

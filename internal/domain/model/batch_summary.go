package model

import (
	"time"

	"github.com/google/uuid"
)

// BatchSummary counts the stored predictions of one batch by risk category.
// CreatedAt is the time of the earliest prediction in the batch.
type BatchSummary struct {
	CreatedAt time.Time
	BatchID   uuid.UUID
	Total     int
	Low       int
	Medium    int
	High      int
}

package vector

import (
	"fmt"
	"strings"

	"video-search/internal/app/errors"
)

// BatchFailure records one failed insert batch.
// Offset is the position of the batch's first item in the submitted slice.
type BatchFailure struct {
	Index  int
	Offset int
	Size   int
	Err    error
}

// InsertReport accumulates per-batch outcomes of an insert.
type InsertReport struct {
	Total     int
	IDs       []string
	Succeeded []int
	Failed    []BatchFailure
}

// Inserted counts fragments in batches that succeeded.
func (r *InsertReport) Inserted() int {
	n := r.Total
	for _, f := range r.Failed {
		n -= f.Size
	}
	return n
}

// FailedIDs lists the ids of fragments whose batch failed.
func (r *InsertReport) FailedIDs() []string {
	var ids []string
	for _, f := range r.Failed {
		lo := f.Offset
		hi := lo + f.Size
		if lo >= len(r.IDs) {
			continue
		}
		if hi > len(r.IDs) {
			hi = len(r.IDs)
		}
		ids = append(ids, r.IDs[lo:hi]...)
	}
	return ids
}

// InsertedIDs lists the ids of fragments in batches that succeeded, in submission order.
func (r *InsertReport) InsertedIDs() []string {
	failed := make(map[string]bool)
	for _, id := range r.FailedIDs() {
		failed[id] = true
	}
	ids := make([]string, 0, len(r.IDs))
	for _, id := range r.IDs {
		if !failed[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Err summarizes failures as an ErrInsertBatch error, or nil when every batch succeeded.
func (r *InsertReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		msgs[i] = fmt.Sprintf("batch %d (%d items): %v", f.Index, f.Size, f.Err)
	}
	return errors.Mark(errors.ErrInsertBatch, nil, "%d of %d batches failed: %s",
		len(r.Failed), len(r.Failed)+len(r.Succeeded), strings.Join(msgs, "; "))
}

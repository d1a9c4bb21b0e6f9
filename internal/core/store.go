package core

import (
	"context"
	"log/slog"
)

// SaveChunkSize is the number of records sent per UpsertBatch call.
const SaveChunkSize = 1000

// RecordStore persists canonical records keyed by ticket number.
//
// UpsertBatch inserts records whose ticket number is new and replaces those
// already stored. Records with an empty ticket number are always inserted.
// FetchAll returns every stored record.
type RecordStore interface {
	UpsertBatch(ctx context.Context, records []Record) error
	FetchAll(ctx context.Context) ([]Record, error)
}

// SaveResult reports a completed save.
type SaveResult struct {
	Saved  int `json:"saved"`
	Chunks int `json:"chunks"`
}

// SaveRecords upserts records in sequential chunks of SaveChunkSize. Chunk
// n+1 is not sent until chunk n succeeds. A failed chunk stops the save and
// returns a PersistenceError with the count already committed. There is no retry.
func SaveRecords(ctx context.Context, store RecordStore, records []Record) (SaveResult, error) {
	var res SaveResult

	for start := 0; start < len(records); start += SaveChunkSize {
		if err := ctx.Err(); err != nil {
			return res, &PersistenceError{Op: "upsert", Committed: res.Saved, Err: err}
		}

		end := min(start+SaveChunkSize, len(records))
		if err := store.UpsertBatch(ctx, records[start:end]); err != nil {
			return res, &PersistenceError{Op: "upsert", Committed: res.Saved, Err: err}
		}

		res.Saved += end - start
		res.Chunks++
		slog.Debug("saved chunk", "chunk", res.Chunks, "records", end-start, "committed", res.Saved)
	}

	return res, nil
}

// FetchRecords reads all records, wrapping failures as PersistenceError.
func FetchRecords(ctx context.Context, store RecordStore) ([]Record, error) {
	recs, err := store.FetchAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch", Err: err}
	}
	return recs, nil
}

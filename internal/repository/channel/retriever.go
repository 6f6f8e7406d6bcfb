// Package channel implements the per-channel retrievers over FT.SEARCH
// indexes. Every retriever settles into a channel.Result status instead of
// returning an error, so one misbehaving backend never aborts the fan-out.
package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domchan "github.com/scenedex/scenedex/internal/domain/channel"

	"github.com/scenedex/scenedex/internal/db"
	"github.com/scenedex/scenedex/internal/domain"
)

// sceneKeyPrefix is where ingestion writes scene documents; the suffix after
// it is the scene (entity) identifier.
const sceneKeyPrefix = domain.KeyPrefix + "scene:"

// IndexName returns the FT index for a channel key.
func IndexName(key domchan.Key) string {
	return fmt.Sprintf("%sidx:%s", domain.KeyPrefix, key)
}

// entityID strips the storage key prefix, leaving the scene identifier.
func entityID(storageKey string) string {
	return strings.TrimPrefix(storageKey, sceneKeyPrefix)
}

// settle converts a store error into the matching terminal status.
// Deadline expiry counts as a timeout whether it surfaces as a context error
// or wrapped inside the store error.
func settle(ctx context.Context, key domchan.Key, err error, started time.Time) domchan.Result {
	took := time.Since(started)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domchan.TimedOut(key, took)
	}
	return domchan.Failed(key, err.Error(), took)
}

// toEntries maps store hits to channel entries, dropping scores below the
// request threshold. Store order (descending raw score) is preserved.
func toEntries(hits []db.SearchEntry, threshold float64) []domchan.Entry {
	entries := make([]domchan.Entry, 0, len(hits))
	for _, h := range hits {
		if threshold > 0 && h.Score < threshold {
			continue
		}
		entries = append(entries, domchan.Entry{EntityID: entityID(h.Key), Score: h.Score})
	}
	return entries
}

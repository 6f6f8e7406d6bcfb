// Package channel defines the retrieval channel vocabulary: channel keys,
// per-channel queries, and tagged retrieval results. A channel is one
// independent source of similarity scores for a query (transcript, visual,
// summary, lexical, person identity).
package channel

import "time"

// Key identifies a retrieval channel.
type Key string

// Known channel keys. The person channel is only used by person-aware fusion,
// never by the content weight model.
const (
	Transcript Key = "transcript"
	Visual     Key = "visual"
	Summary    Key = "summary"
	Lexical    Key = "lexical"
	Person     Key = "person"
)

// IsValid reports whether k is a known channel key.
func (k Key) IsValid() bool {
	switch k {
	case Transcript, Visual, Summary, Lexical, Person:
		return true
	}
	return false
}

// ContentKeys returns the channel keys that participate in content fusion,
// in tie-break priority order.
func ContentKeys() []Key {
	return []Key{Transcript, Visual, Summary, Lexical}
}

// Query is one bounded similarity lookup against a channel's backing store.
type Query struct {
	Owner     string
	Text      string
	Vector    []float32
	Cap       int
	Threshold float64
}

// Status tags the outcome of a channel retrieval. Failure modes are values,
// not errors, so the orchestrator treats every channel uniformly.
type Status string

const (
	// StatusOK means the channel returned at least one entry.
	StatusOK Status = "ok"
	// StatusEmpty means the lookup succeeded with zero entries.
	StatusEmpty Status = "empty"
	// StatusFailed means the backing store returned an error.
	StatusFailed Status = "failed"
	// StatusTimedOut means the per-channel deadline expired.
	StatusTimedOut Status = "timed_out"
)

// Entry is one ranked hit from a channel: an entity and its raw score.
type Entry struct {
	EntityID string
	Score    float64
}

// Result is the settled outcome of one channel retrieval. Entries are ordered
// by descending raw score with insertion-order tie-breaks, as returned by the
// backing store.
type Result struct {
	Key     Key
	Entries []Entry
	Status  Status
	Reason  string
	Took    time.Duration
}

// OK creates a successful result; zero entries settle as StatusEmpty.
func OK(key Key, entries []Entry, took time.Duration) Result {
	status := StatusOK
	if len(entries) == 0 {
		status = StatusEmpty
	}
	return Result{Key: key, Entries: entries, Status: status, Took: took}
}

// Failed creates a failed result carrying the backend failure reason.
func Failed(key Key, reason string, took time.Duration) Result {
	return Result{Key: key, Status: StatusFailed, Reason: reason, Took: took}
}

// TimedOut creates a timed-out result.
func TimedOut(key Key, took time.Duration) Result {
	return Result{Key: key, Status: StatusTimedOut, Took: took}
}

// Settled reports whether the retrieval produced usable entries.
func (r Result) Settled() bool { return r.Status == StatusOK }

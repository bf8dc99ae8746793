package capsule

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Defaults applied at creation when the caller omits the field.
const (
	DefaultDomain = "general"
	DefaultAuthor = "Kai"
)

// IDPrefix precedes the ULID portion of every capsule ID.
const IDPrefix = "capsule_"

// Capsule represents a stored knowledge capsule.
type Capsule struct {
	// ID uniquely identifies the capsule for the lifetime of the store.
	ID string `json:"id"`

	// Title is a non-empty display string.
	Title string `json:"title"`

	// Content is the free-text body.
	Content string `json:"content"`

	// Source indicates provenance (nullable).
	Source *string `json:"source,omitempty"`

	// Domain is the topical category; DefaultDomain when the caller omits it.
	Domain string `json:"domain"`

	// Tags is the keyword set used for collision scoring. Never nil
	// internally; absence is an empty set.
	Tags []string `json:"tags"`

	// QualityScore is the composite rating in [0, 100], assigned once at
	// creation and read-only thereafter.
	QualityScore float64 `json:"quality_score"`

	// Author defaults to DefaultAuthor.
	Author string `json:"author"`

	// CreatedAt is the Unix timestamp of creation; immutable.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is bumped on any field mutation.
	UpdatedAt int64 `json:"updated_at"`

	// Metadata is an opaque key/value bag passed through unmodified (nullable).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Filter narrows a Store.List call. The zero Filter enumerates every
// capsule (a full scan).
type Filter struct {
	// Domain restricts results to an exact domain match.
	Domain *string

	// MinScore keeps capsules with QualityScore >= MinScore.
	MinScore *float64

	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// Store is the narrow storage contract the core consumes. Implementations
// must be safe for concurrent use from multiple callers.
type Store interface {
	// Insert persists a new capsule. The write is atomic: either the full
	// record lands or nothing does.
	Insert(ctx context.Context, c *Capsule) error

	// GetByID returns the capsule with the given ID, or NotFound.
	GetByID(ctx context.Context, id string) (*Capsule, error)

	// Update persists mutable fields of an existing capsule, or NotFound.
	Update(ctx context.Context, c *Capsule) error

	// DeleteByID removes the capsule and reports whether it existed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// List enumerates capsules matching the filter, ordered by created_at
	// descending (ties broken by ID descending, which preserves creation
	// order for ULID-derived IDs).
	List(ctx context.Context, f Filter) ([]*Capsule, error)
}

// entropy is shared across NewID calls so same-millisecond ULIDs stay
// monotonic; entropyMu guards it because MonotonicEntropy is not safe
// for concurrent use.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID generates a fresh capsule ID: the "capsule_" prefix followed by a
// ULID (millisecond timestamp plus monotonic entropy), which keeps IDs
// collision-free and lexicographically ordered by creation time.
func NewID() (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return IDPrefix + id.String(), nil
}

// NormalizeTags trims whitespace, drops empties, and deduplicates while
// preserving first-seen order. Always returns a non-nil slice.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

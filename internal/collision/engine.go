// Package collision implements pairwise similarity detection between
// capsules: tag-set overlap weighted by domain match.
package collision

import (
	"context"
	"math"
	"sort"

	"github.com/wanyview/capsuled/internal/capsule"
)

const (
	// DefaultLimit caps detection results when the caller passes limit <= 0.
	DefaultLimit = 20

	// DomainBonus multiplies the similarity when domains match, so the
	// final score can exceed raw similarity but never 1.2.
	DomainBonus = 1.2
)

// Collision is a transient query result; it is never persisted and does
// not alter store state.
type Collision struct {
	CapsuleID string  `json:"capsule_id"`
	Title     string  `json:"title"`
	Domain    string  `json:"domain"`
	Score     float64 `json:"score"`
}

// Engine scans the store for capsules colliding with a target.
type Engine struct {
	store capsule.Store
}

// NewEngine creates an engine reading through the given store.
func NewEngine(store capsule.Store) *Engine {
	return &Engine{store: store}
}

// Detect computes a similarity score between the target capsule and every
// other stored capsule, keeps candidates scoring at or above threshold,
// and returns at most limit results sorted by score descending. Equal
// scores keep the store's scan order (newest first) — that tie-break is
// deliberate and covered by tests, not part of the contract.
//
// Full scan: O(N*T) for N capsules with average tag-set size T. Fine at
// this scale; an index over tags would be the first fix for a larger store.
func (e *Engine) Detect(ctx context.Context, targetID string, threshold float64, limit int) ([]Collision, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	target, err := e.store.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	targetTags := toSet(target.Tags)

	candidates, err := e.store.List(ctx, capsule.Filter{})
	if err != nil {
		return nil, err
	}

	collisions := make([]Collision, 0)
	for _, c := range candidates {
		if c.ID == targetID {
			continue
		}

		score := Score(targetTags, toSet(c.Tags), target.Domain == c.Domain)
		if score < threshold {
			continue
		}

		collisions = append(collisions, Collision{
			CapsuleID: c.ID,
			Title:     c.Title,
			Domain:    c.Domain,
			Score:     score,
		})
	}

	sort.SliceStable(collisions, func(i, j int) bool {
		return collisions[i].Score > collisions[j].Score
	})

	if len(collisions) > limit {
		collisions = collisions[:limit]
	}

	return collisions, nil
}

// Score computes the collision score between two tag sets: intersection
// size over the larger set size (not true Jaccard), times DomainBonus when
// sameDomain, rounded to 3 decimal places. Either set being empty scores 0.
func Score(target, candidate map[string]struct{}, sameDomain bool) float64 {
	if len(target) == 0 || len(candidate) == 0 {
		return 0
	}

	overlap := 0
	for tag := range target {
		if _, ok := candidate[tag]; ok {
			overlap++
		}
	}

	similarity := float64(overlap) / float64(max(len(target), len(candidate)))

	bonus := 1.0
	if sameDomain {
		bonus = DomainBonus
	}

	return round3(similarity * bonus)
}

// toSet builds a membership set from a tag slice.
func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// round3 rounds to 3 decimal places.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

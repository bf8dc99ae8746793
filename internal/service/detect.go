package service

import (
	"context"
	"strings"

	"github.com/wanyview/capsuled/internal/collision"
	"github.com/wanyview/capsuled/internal/errors"
)

// DetectInput contains parameters for the Detect operation.
type DetectInput struct {
	ID        string
	Threshold float64 // minimum score to report; values above 1.0 are valid
	Limit     int     // default: 20
}

// Detect finds capsules colliding with the target, sorted by score
// descending and truncated to the limit.
func (s *Service) Detect(ctx context.Context, input DetectInput) ([]collision.Collision, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Threshold < 0 {
		return nil, errors.NewInvalidRequest("threshold must not be negative")
	}

	return s.engine.Detect(ctx, id, input.Threshold, input.Limit)
}

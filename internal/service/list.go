package service

import (
	"context"

	"github.com/wanyview/capsuled/internal/capsule"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Domain   *string  // optional exact-match filter
	MinScore *float64 // optional quality floor
	Limit    int      // default: 20, max: 100
}

// List retrieves capsules newest first, optionally filtered by domain
// and minimum quality score.
func (s *Service) List(ctx context.Context, input ListInput) ([]*capsule.Capsule, error) {
	filter := capsule.Filter{
		Domain:   cleanOptionalString(input.Domain),
		MinScore: input.MinScore,
		Limit:    clampLimit(input.Limit),
	}
	return s.store.List(ctx, filter)
}

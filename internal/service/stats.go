package service

import (
	"context"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/quality"
)

// StatsOutput summarizes the store.
type StatsOutput struct {
	TotalCount      int            `json:"total_count"`
	AverageQuality  float64        `json:"average_quality_score"`
	PerDomainCounts map[string]int `json:"per_domain_counts"`
}

// Stats aggregates over a full scan through the storage interface. The
// average is 0 for an empty store, otherwise rounded to 2 decimal places.
func (s *Service) Stats(ctx context.Context) (*StatsOutput, error) {
	capsules, err := s.store.List(ctx, capsule.Filter{})
	if err != nil {
		return nil, err
	}

	out := &StatsOutput{
		TotalCount:      len(capsules),
		PerDomainCounts: make(map[string]int),
	}

	var sum float64
	for _, c := range capsules {
		sum += c.QualityScore
		out.PerDomainCounts[c.Domain]++
	}
	if out.TotalCount > 0 {
		out.AverageQuality = quality.Round2(sum / float64(out.TotalCount))
	}

	return out, nil
}

package service

import (
	"context"
	"testing"

	"github.com/wanyview/capsuled/internal/errors"
)

func TestStats_EmptyStore(t *testing.T) {
	svc := newTestService(t)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", stats.TotalCount)
	}
	if stats.AverageQuality != 0 {
		t.Errorf("AverageQuality = %v, want 0 for empty store", stats.AverageQuality)
	}
	if len(stats.PerDomainCounts) != 0 {
		t.Errorf("PerDomainCounts = %v, want empty", stats.PerDomainCounts)
	}
}

func TestStats_CountsAndAverage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inputs := []CreateInput{
		{Title: "a", Content: "c", Domain: stringPtr("science")},
		{Title: "b", Content: "c", Domain: stringPtr("science")},
		{Title: "c", Content: "c", Domain: stringPtr("art")},
	}
	var sum float64
	for _, in := range inputs {
		c, err := svc.Create(ctx, in)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		sum += c.QualityScore
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", stats.TotalCount)
	}
	if stats.PerDomainCounts["science"] != 2 {
		t.Errorf("science count = %d, want 2", stats.PerDomainCounts["science"])
	}
	if stats.PerDomainCounts["art"] != 1 {
		t.Errorf("art count = %d, want 1", stats.PerDomainCounts["art"])
	}

	avg := stats.AverageQuality
	if avg <= 0 || avg > 100 {
		t.Errorf("AverageQuality = %v, want in (0, 100]", avg)
	}
	// Within rounding distance of the true mean.
	trueMean := sum / 3
	if diff := avg - trueMean; diff > 0.005 || diff < -0.005 {
		t.Errorf("AverageQuality = %v, want ~%v", avg, trueMean)
	}
}

func TestStats_ReflectsDeletes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{Title: "a", Content: "c"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalCount != 0 {
		t.Errorf("TotalCount = %d after delete, want 0", stats.TotalCount)
	}
	if stats.AverageQuality != 0 {
		t.Errorf("AverageQuality = %v, want 0", stats.AverageQuality)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(t)

	err := svc.Delete(context.Background(), "capsule_missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

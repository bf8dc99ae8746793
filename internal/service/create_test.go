package service

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/config"
	"github.com/wanyview/capsuled/internal/db"
	"github.com/wanyview/capsuled/internal/errors"
	"github.com/wanyview/capsuled/internal/quality"
)

// newTestService builds a Service over a fresh temp-dir store.
func newTestService(t *testing.T) *Service {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{DefaultAuthor: "Kai"}
	return New(db.New(database), quality.NewDATMScorer(), cfg)
}

func stringPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestCreate_HappyPath(t *testing.T) {
	svc := newTestService(t)

	c, err := svc.Create(context.Background(), CreateInput{
		Title:   "Ocean currents",
		Content: "Warm currents redistribute equatorial heat toward the poles",
		Source:  stringPtr("fieldwork"),
		Domain:  stringPtr("science"),
		Tags:    []string{"ocean", "climate"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(c.ID, capsule.IDPrefix) {
		t.Errorf("ID = %q, want %q prefix", c.ID, capsule.IDPrefix)
	}
	if c.Domain != "science" {
		t.Errorf("Domain = %q, want science", c.Domain)
	}
	if !reflect.DeepEqual(c.Tags, []string{"ocean", "climate"}) {
		t.Errorf("Tags = %v, want caller-supplied tags", c.Tags)
	}
	if c.Author != "Kai" {
		t.Errorf("Author = %q, want Kai", c.Author)
	}
	if c.QualityScore < 0 || c.QualityScore > 100 {
		t.Errorf("QualityScore = %v outside [0, 100]", c.QualityScore)
	}
	if c.CreatedAt == 0 || c.CreatedAt != c.UpdatedAt {
		t.Errorf("timestamps: created=%d updated=%d", c.CreatedAt, c.UpdatedAt)
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc := newTestService(t)

	c, err := svc.Create(context.Background(), CreateInput{
		Title:   "Untitled domain",
		Content: "Content without domain author or tags supplied here",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if c.Domain != capsule.DefaultDomain {
		t.Errorf("Domain = %q, want %q", c.Domain, capsule.DefaultDomain)
	}
	if c.Author != "Kai" {
		t.Errorf("Author = %q, want default author", c.Author)
	}
}

func TestCreate_DerivesTagsFromContent(t *testing.T) {
	svc := newTestService(t)

	c, err := svc.Create(context.Background(), CreateInput{
		Title:   "Derived",
		Content: "Ocean currents shape regional climate patterns worldwide",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(c.Tags) == 0 {
		t.Fatal("expected derived tags")
	}
	if len(c.Tags) > capsule.MaxExtractedTags {
		t.Errorf("len(Tags) = %d, want <= %d", len(c.Tags), capsule.MaxExtractedTags)
	}
	for _, tag := range c.Tags {
		if len([]rune(tag)) <= 3 {
			t.Errorf("derived tag %q has length <= 3", tag)
		}
		if tag != strings.ToLower(tag) {
			t.Errorf("derived tag %q not lowercased", tag)
		}
	}
}

func TestCreate_AllStopwordContentYieldsEmptyTags(t *testing.T) {
	svc := newTestService(t)

	c, err := svc.Create(context.Background(), CreateInput{
		Title:   "Thin",
		Content: "the a an is of in on at by",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if c.Tags == nil {
		t.Error("Tags should be an empty set, not nil")
	}
	if len(c.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", c.Tags)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"empty title", CreateInput{Content: "body"}},
		{"blank title", CreateInput{Title: "   ", Content: "body"}},
		{"empty content", CreateInput{Title: "t"}},
		{"blank content", CreateInput{Title: "t", Content: "  \n "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("err = %v, want INVALID_REQUEST", err)
			}
		})
	}

	// Nothing was persisted.
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalCount != 0 {
		t.Errorf("TotalCount = %d after rejected creates, want 0", stats.TotalCount)
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Title:    "Round trip",
		Content:  "Capsule content survives persistence unchanged each time",
		Source:   stringPtr("unit"),
		Domain:   stringPtr("science"),
		Tags:     []string{"ocean", "climate"},
		Metadata: map[string]any{"key": "value"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.ID != created.ID || got.Title != created.Title || got.Content != created.Content {
		t.Error("round trip changed identity fields")
	}
	if *got.Source != *created.Source || got.Domain != created.Domain || got.Author != created.Author {
		t.Error("round trip changed descriptive fields")
	}
	if got.QualityScore != created.QualityScore {
		t.Errorf("QualityScore = %v, want %v", got.QualityScore, created.QualityScore)
	}
	if got.CreatedAt != created.CreatedAt || got.UpdatedAt != created.UpdatedAt {
		t.Error("round trip changed timestamps")
	}
	// Tag equality is set equality, not sequence equality.
	if !sameTagSet(got.Tags, created.Tags) {
		t.Errorf("Tags = %v, want set %v", got.Tags, created.Tags)
	}
	if got.Metadata["key"] != "value" {
		t.Errorf("Metadata = %v, want key=value", got.Metadata)
	}
}

func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	for _, tag := range b {
		if !set[tag] {
			return false
		}
	}
	return true
}

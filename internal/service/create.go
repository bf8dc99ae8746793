package service

import (
	"context"
	"strings"
	"time"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/errors"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title    string         // required
	Content  string         // required
	Source   *string        // optional provenance
	Domain   *string        // default: "general"
	Tags     []string       // derived from content when empty
	Author   *string        // default: config DefaultAuthor
	Metadata map[string]any // opaque, passed through
}

// Create validates the draft, assigns ID, tags, and quality score, and
// persists the capsule. Validation failures reject the request before any
// store mutation; the insert itself is all-or-nothing.
func (s *Service) Create(ctx context.Context, input CreateInput) (*capsule.Capsule, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}

	domain := capsule.DefaultDomain
	if d := cleanOptionalString(input.Domain); d != nil {
		domain = *d
	}

	author := s.cfg.DefaultAuthor
	if author == "" {
		author = capsule.DefaultAuthor
	}
	if a := cleanOptionalString(input.Author); a != nil {
		author = *a
	}

	tags := capsule.NormalizeTags(input.Tags)
	if len(tags) == 0 {
		tags = capsule.ExtractTags(input.Content)
	}

	id, err := capsule.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	c := &capsule.Capsule{
		ID:        id,
		Title:     title,
		Content:   input.Content,
		Source:    cleanOptionalString(input.Source),
		Domain:    domain,
		Tags:      tags,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  input.Metadata,
	}
	c.QualityScore = s.scorer.Score(c)

	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/errors"
)

// UpdateInput contains parameters for the Update operation. Nil fields are
// left unchanged; supplying tags replaces the whole set. Content changes do
// not re-derive tags — the caller opted into the original set at creation.
type UpdateInput struct {
	ID      string
	Title   *string
	Content *string
	Tags    *[]string
	Source  *string
	Domain  *string
}

// Update mutates the given fields of an existing capsule and bumps
// updated_at. ID, quality score, and created_at never change.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*capsule.Capsule, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Title == nil && input.Content == nil && input.Tags == nil &&
		input.Source == nil && input.Domain == nil {
		return nil, errors.NewInvalidRequest("at least one field must be provided")
	}

	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errors.NewInvalidRequest("title must not be empty")
		}
		c.Title = title
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, errors.NewInvalidRequest("content must not be empty")
		}
		c.Content = *input.Content
	}
	if input.Tags != nil {
		c.Tags = capsule.NormalizeTags(*input.Tags)
	}
	if input.Source != nil {
		c.Source = cleanOptionalString(input.Source)
	}
	if input.Domain != nil {
		domain := capsule.DefaultDomain
		if d := cleanOptionalString(input.Domain); d != nil {
			domain = *d
		}
		c.Domain = domain
	}

	c.UpdatedAt = time.Now().Unix()

	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

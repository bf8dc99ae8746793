package service

import (
	"context"
	"strings"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/errors"
)

// Get retrieves a capsule by ID.
func (s *Service) Get(ctx context.Context, id string) (*capsule.Capsule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return s.store.GetByID(ctx, id)
}

package service

import (
	"context"
	"strings"

	"github.com/wanyview/capsuled/internal/errors"
)

// Delete removes a capsule. Once Delete returns, the capsule no longer
// appears in Get, List, or Detect results.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.NewInvalidRequest("id is required")
	}

	existed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return errors.NewNotFound(id)
	}
	return nil
}

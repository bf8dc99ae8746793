// Package service composes the store, scorer, and collision engine into
// the operations external layers (HTTP, CLI, MCP) invoke.
package service

import (
	"strings"

	"github.com/wanyview/capsuled/internal/capsule"
	"github.com/wanyview/capsuled/internal/collision"
	"github.com/wanyview/capsuled/internal/config"
	"github.com/wanyview/capsuled/internal/quality"
)

// Pagination limits for List.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service orchestrates capsule operations over explicitly injected
// collaborators. There is no global state; the caller owns the store's
// lifetime and shutdown.
type Service struct {
	store  capsule.Store
	scorer quality.Scorer
	engine *collision.Engine
	cfg    *config.Config
}

// New wires a Service. The scorer is an interface so the stub quality
// policy can be swapped without touching any operation.
func New(store capsule.Store, scorer quality.Scorer, cfg *config.Config) *Service {
	return &Service{
		store:  store,
		scorer: scorer,
		engine: collision.NewEngine(store),
		cfg:    cfg,
	}
}

// clampLimit applies the default and hard cap for list-style operations.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// cleanOptionalString trims an optional string, mapping blank to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

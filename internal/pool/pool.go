// Package pool supplies candidate players for a sport. The engine asks for
// a pool exactly once per draft creation and owns its copy afterwards.
package pool

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/draftarena/engine/internal/models"
)

// Provider supplies the candidate list for one sport.
type Provider interface {
	GetPool(ctx context.Context, sport string) ([]models.DraftPlayer, error)
}

// Static serves pools loaded up front, keyed by upper-cased sport name.
type Static struct {
	mu    sync.RWMutex
	pools map[string][]models.DraftPlayer
}

// NewStatic builds a provider from in-memory pools.
func NewStatic(pools map[string][]models.DraftPlayer) *Static {
	normalized := make(map[string][]models.DraftPlayer, len(pools))
	for sport, players := range pools {
		normalized[strings.ToUpper(sport)] = players
	}
	return &Static{pools: normalized}
}

// poolFile is the on-disk fixture format.
type poolFile struct {
	Sports map[string][]models.DraftPlayer `yaml:"sports"`
}

// LoadFile reads a YAML pool fixture and returns a Static provider.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}

	var f poolFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pool file: %w", err)
	}
	if len(f.Sports) == 0 {
		return nil, fmt.Errorf("pool file %s defines no sports", path)
	}

	return NewStatic(f.Sports), nil
}

// GetPool returns a copy of the sport's pool so callers can mutate freely.
func (s *Static) GetPool(_ context.Context, sport string) ([]models.DraftPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players, ok := s.pools[strings.ToUpper(sport)]
	if !ok {
		return nil, fmt.Errorf("no player pool for sport %q", sport)
	}

	out := make([]models.DraftPlayer, len(players))
	copy(out, players)
	return out, nil
}

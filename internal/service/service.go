// Package service exposes extraction, agent logs and replay to the transports.
package service

import (
	"errors"
	"strings"
	"sync"

	"github.com/xiaot623/gogo/replay/internal/checkpoint"
	"github.com/xiaot623/gogo/replay/internal/config"
	"github.com/xiaot623/gogo/replay/internal/repository"
)

// ErrInvalidRunName is returned for an empty or unsafe simulation name.
var ErrInvalidRunName = errors.New("invalid name of the simulation")

type Service struct {
	catalog    repository.Catalog
	aggregator *checkpoint.Aggregator
	config     *config.Config
	personas   []string

	// runLocks serializes extractions writing to the same output directory.
	runLocks sync.Map

	movementMu    sync.Mutex
	movementCache map[string]cachedMovement
}

// New creates the service. catalog may be nil, in which case extractions are
// not recorded. personas lists the agents whose logs are served by default.
func New(catalog repository.Catalog, cfg *config.Config, personas []string) *Service {
	return &Service{
		catalog:       catalog,
		aggregator:    checkpoint.NewAggregator(cfg.ReadWorkers),
		config:        cfg,
		personas:      append([]string(nil), personas...),
		movementCache: make(map[string]cachedMovement),
	}
}

func (s *Service) lockFor(dir string) func() {
	v, _ := s.runLocks.LoadOrStore(dir, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func validRunName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

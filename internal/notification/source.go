package notification

import (
	"context"
	"sync"
	"time"

	"structnotify/internal/constants"
)

// GatherSource is one named producer of notification events. The hosting
// dispatch layer asks every registered source to gather for a user, and can
// also ask which storage locations a source's output depends on, so derived
// caches get invalidated when those change.
type GatherSource interface {
	Name() string
	Gather(ctx context.Context, user string, now time.Time) ([]Event, error)
	CacheDependencies(ctx context.Context) ([]string, error)
}

// Registry holds gather sources in registration order.
type Registry struct {
	mu      sync.RWMutex
	sources []GatherSource
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(s GatherSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

// GatherAll collects events from every source whose name is in plugins. An
// empty plugins list addresses all sources.
func (r *Registry) GatherAll(ctx context.Context, user string, plugins []string, now time.Time) ([]Event, error) {
	r.mu.RLock()
	sources := make([]GatherSource, len(r.sources))
	copy(sources, r.sources)
	r.mu.RUnlock()

	var events []Event
	for _, s := range sources {
		if !pluginSelected(s.Name(), plugins) {
			continue
		}
		gathered, err := s.Gather(ctx, user, now)
		if err != nil {
			return nil, err
		}
		events = append(events, gathered...)
	}
	return events, nil
}

// CacheDependenciesFor lists the storage locations behind the selected
// sources.
func (r *Registry) CacheDependenciesFor(ctx context.Context, plugins []string) ([]string, error) {
	r.mu.RLock()
	sources := make([]GatherSource, len(r.sources))
	copy(sources, r.sources)
	r.mu.RUnlock()

	var deps []string
	for _, s := range sources {
		if !pluginSelected(s.Name(), plugins) {
			continue
		}
		sourceDeps, err := s.CacheDependencies(ctx)
		if err != nil {
			return nil, err
		}
		deps = append(deps, sourceDeps...)
	}
	return deps, nil
}

func pluginSelected(name string, plugins []string) bool {
	if len(plugins) == 0 {
		return true
	}
	for _, p := range plugins {
		if p == name {
			return true
		}
	}
	return false
}

// SchemaLister reports which schemas the stored predicates read from.
type SchemaLister interface {
	BackingSchemas(ctx context.Context) ([]string, error)
}

// EngineSource registers the predicate engine in the registry under its
// fixed source name.
type EngineSource struct {
	generator     *Generator
	schemas       SchemaLister
	storeLocation string
}

func NewEngineSource(generator *Generator, schemas SchemaLister, storeLocation string) *EngineSource {
	return &EngineSource{
		generator:     generator,
		schemas:       schemas,
		storeLocation: storeLocation,
	}
}

func (s *EngineSource) Name() string {
	return constants.SourceName
}

func (s *EngineSource) Gather(ctx context.Context, user string, now time.Time) ([]Event, error) {
	return s.generator.Generate(ctx, user, now)
}

// CacheDependencies names the predicate store first, then every schema the
// stored predicates read from.
func (s *EngineSource) CacheDependencies(ctx context.Context) ([]string, error) {
	deps := []string{s.storeLocation + "#predicates"}

	schemas, err := s.schemas.BackingSchemas(ctx)
	if err != nil {
		return nil, err
	}
	for _, schema := range schemas {
		deps = append(deps, "schema:"+schema)
	}
	return deps, nil
}

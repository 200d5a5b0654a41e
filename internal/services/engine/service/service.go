// Package service is the engine's application layer. It composes the rule
// domain, the static content catalogs and storage into the operations the
// gRPC and MCP surfaces expose. Failures are returned as platform errors
// carrying a code and the metadata their localized messages need.
package service

import (
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/wrathforge/internal/platform/grpc/pagination"
	"github.com/louisbranch/wrathforge/internal/platform/id"
	"github.com/louisbranch/wrathforge/internal/random"
	"github.com/louisbranch/wrathforge/internal/services/engine/content"
	"github.com/louisbranch/wrathforge/internal/services/engine/domain/ability"
	"github.com/louisbranch/wrathforge/internal/services/engine/storage"
)

const tracerName = "github.com/louisbranch/wrathforge/internal/services/engine/service"

// Page size bounds for list operations.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Service runs engine operations.
type Service struct {
	characters storage.CharacterStore
	rolls      storage.RollLog
	content    *content.Registry
	abilities  *ability.Engine
	tracer     trace.Tracer
	clock      func() time.Time
	idGen      func() (string, error)
	seedGen    func(*int64) (int64, random.SeedSource, error)
	warnf      func(format string, args ...any)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source for stored timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides how character and roll ids are generated.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.idGen = gen
		}
	}
}

// WithSeedResolver overrides how roll seeds are chosen.
func WithSeedResolver(resolve func(*int64) (int64, random.SeedSource, error)) Option {
	return func(s *Service) {
		if resolve != nil {
			s.seedGen = resolve
		}
	}
}

// WithWarnf routes ability formula warnings; the default is log.Printf.
func WithWarnf(warnf func(format string, args ...any)) Option {
	return func(s *Service) {
		if warnf != nil {
			s.warnf = warnf
		}
	}
}

// New builds a service over the given stores and catalogs.
func New(characters storage.CharacterStore, rolls storage.RollLog, registry *content.Registry, opts ...Option) (*Service, error) {
	if characters == nil {
		return nil, fmt.Errorf("character store is required")
	}
	if rolls == nil {
		return nil, fmt.Errorf("roll log is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("content registry is required")
	}
	s := &Service{
		characters: characters,
		rolls:      rolls,
		content:    registry,
		tracer:     otel.Tracer(tracerName),
		clock:      time.Now,
		idGen:      id.NewID,
		seedGen:    random.ResolveSeed,
		warnf:      log.Printf,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.abilities = ability.NewEngine(registry, ability.WithWarnf(s.warnf))
	return s, nil
}

// Content returns the catalogs the service reads.
func (s *Service) Content() *content.Registry {
	return s.content
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func pageSize(requested int) int {
	return pagination.ClampPageSize(requested, pagination.PageSizeConfig{Default: DefaultPageSize, Max: MaxPageSize})
}

package testfixtures

import (
	"log/slog"
	"time"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/convention"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// ConventionServiceDeps captures dependencies for constructing a convention service.
// A nil Rules means convention.DefaultRules.
type ConventionServiceDeps struct {
	Conventions application.ConventionRepository
	Rules       *convention.Rules
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewConventionService builds a convention service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewConventionService(deps ConventionServiceDeps) *application.ConventionService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	rules := convention.DefaultRules()
	if deps.Rules != nil {
		rules = *deps.Rules
	}
	return application.NewConventionServiceWithLogger(
		deps.Conventions,
		rules,
		idGen,
		now,
		deps.Logger,
	)
}

// NewScheduleService builds a schedule service.
func (f *ServiceFactory) NewScheduleService(logger *slog.Logger) *application.ScheduleService {
	return application.NewScheduleService(logger)
}

package observer

import (
	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/observability"
	"github.com/google/uuid"
)

type config struct {
	name    string
	logger  observability.Logger
	metrics *observability.Metrics
	main    dispatch.MainQueue
}

func defaultConfig() *config {
	return &config{
		name:   uuid.NewString(),
		logger: observability.Default(),
	}
}

// Option configures a Registry.
type Option func(*config)

// WithName sets the name the registry logs under. Defaults to a random UUID.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics records registry activity in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithMainQueue replaces the process main queue for the main-queue policies.
func WithMainQueue(q dispatch.MainQueue) Option {
	return func(c *config) {
		c.main = q
	}
}

type observeConfig struct {
	storeAsPointer *bool
}

// ObserveOption configures a single registration.
type ObserveOption func(*observeConfig)

// StoreAsPointer forces raw handle storage (true) or weak storage (false)
// for the observed object.
func StoreAsPointer(raw bool) ObserveOption {
	return func(c *observeConfig) {
		c.storeAsPointer = &raw
	}
}

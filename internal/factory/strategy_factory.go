package factory

import (
	"fmt"
	"sort"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/model"

	"go.uber.org/zap"
)

// StrategyFactory defines a function that builds a distribution strategy from the config.
type StrategyFactory func(cfg *config.Config, logger *zap.Logger) (model.Strategy, error)

// registry holds the mapping of strategy names to their factory functions.
var registry = make(map[string]StrategyFactory)

// RegisterStrategy registers a new strategy with its factory function.
func RegisterStrategy(name string, factory StrategyFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("strategy '%s' already registered", name))
	}
	registry[name] = factory
}

// Create builds the strategy registered under name.
func Create(name string, cfg *config.Config, logger *zap.Logger) (model.Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: '%s'", name)
	}
	strategy, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating strategy '%s': %w", name, err)
	}
	return strategy, nil
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

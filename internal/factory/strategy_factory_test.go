package factory

import (
	"context"
	"testing"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/model"

	"go.uber.org/zap"
)

type stubStrategy struct{}

func (stubStrategy) Name() string { return "stub" }

func (stubStrategy) Run(context.Context, model.SourceOpener, model.RunOptions) (*model.Result, error) {
	return &model.Result{}, nil
}

func TestRegistry(t *testing.T) {
	if _, ok := registry["stub"]; !ok {
		RegisterStrategy("stub", func(*config.Config, *zap.Logger) (model.Strategy, error) {
			return stubStrategy{}, nil
		})
	}

	s, err := Create("stub", config.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if s.Name() != "stub" {
		t.Errorf("Expected strategy 'stub', got %s", s.Name())
	}

	if _, err := Create("missing", config.Default(), zap.NewNop()); err == nil {
		t.Error("Expected an error for an unknown strategy")
	}

	found := false
	for _, n := range Names() {
		found = found || n == "stub"
	}
	if !found {
		t.Errorf("Names() = %v, missing 'stub'", Names())
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected a panic on duplicate registration")
		}
	}()
	RegisterStrategy("stub", nil)
}

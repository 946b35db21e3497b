package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catzilla-project/catzilla/app"
	"github.com/catzilla-project/catzilla/internal/config"
)

func TestApplySetsProductionFlag(t *testing.T) {
	a := app.New()
	cfg := &config.Config{Production: true, Allocator: "auto"}

	config.Apply(a, cfg)

	assert.True(t, a.Production)
}

func TestApplySwapsAllocatorBackendWhenOverridden(t *testing.T) {
	a := app.New()
	cfg := &config.Config{Allocator: "system"}

	config.Apply(a, cfg)

	assert.Equal(t, "system", a.Arenas.Alloc.Backend())
}

func TestApplyLeavesAutoAllocatorAlone(t *testing.T) {
	a := app.New()
	original := a.Arenas
	cfg := &config.Config{Allocator: "auto"}

	config.Apply(a, cfg)

	assert.Same(t, original, a.Arenas)
}

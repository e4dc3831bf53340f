package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationFallsBackOnInvalidInput(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseDuration("not-a-duration", 5*time.Second))
	assert.Equal(t, 10*time.Minute, parseDuration("10m", time.Second))
}

func TestParseBoolFallsBackOnInvalidInput(t *testing.T) {
	assert.Equal(t, true, parseBool("not-a-bool", true))
	assert.Equal(t, false, parseBool("false", true))
}

func TestParseIntFallsBackOnInvalidInput(t *testing.T) {
	assert.Equal(t, 42, parseInt("not-an-int", 42))
	assert.Equal(t, 7, parseInt("7", 42))
}

func TestParseStringSliceSplitsAndTrims(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, parseStringSlice("a, b ,c"))
	assert.Equal(t, []string{}, parseStringSlice(""))
	assert.Equal(t, []string{}, parseStringSlice("   "))
}

func TestIsDevelopmentAndIsProduction(t *testing.T) {
	dev := &Config{Env: "development"}
	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())

	prod := &Config{Env: "production"}
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.IsDevelopment())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 0.90, cfg.Thresholds.NameHigh)
	assert.Equal(t, 0.80, cfg.Thresholds.NameMedium)
	assert.Equal(t, 0.80, cfg.Thresholds.ReviewThreshold)
	assert.Equal(t, 0.99, cfg.Thresholds.PhoneAndNameConfidence)
	assert.Equal(t, 5, cfg.Thresholds.MaxChainDepth)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DEDUP_NAME_HIGH", "0.92")
	t.Setenv("DEDUP_REVIEW_THRESHOLD", "0.85")
	t.Setenv("DEDUP_MAX_CHAIN_DEPTH", "3")

	cfg := LoadConfig()
	assert.Equal(t, 0.92, cfg.Thresholds.NameHigh)
	assert.Equal(t, 0.85, cfg.Thresholds.ReviewThreshold)
	assert.Equal(t, 3, cfg.Thresholds.MaxChainDepth)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("DEDUP_NAME_HIGH", "1.5")
	t.Setenv("DEDUP_PHONE_CONFIDENCE", "not-a-number")
	t.Setenv("DEDUP_MAX_CHAIN_DEPTH", "-2")

	cfg := LoadConfig()
	assert.Equal(t, 0.90, cfg.Thresholds.NameHigh)
	assert.Equal(t, 0.90, cfg.Thresholds.PhoneConfidence)
	assert.Equal(t, 5, cfg.Thresholds.MaxChainDepth)
}

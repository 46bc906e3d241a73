package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"candidate-dedup/internal/dedup"
)

type Config struct {
	DatabaseURL string

	// Match thresholds, tunable per environment without code changes.
	Thresholds dedup.Thresholds
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		log.Println("Warning: Could not load .env file, using environment variables")
	}

	t := dedup.DefaultThresholds()
	t.NameHigh = envFloat("DEDUP_NAME_HIGH", t.NameHigh)
	t.NameMedium = envFloat("DEDUP_NAME_MEDIUM", t.NameMedium)
	t.ReviewThreshold = envFloat("DEDUP_REVIEW_THRESHOLD", t.ReviewThreshold)
	t.PhoneAndNameConfidence = envFloat("DEDUP_PHONE_AND_NAME_CONFIDENCE", t.PhoneAndNameConfidence)
	t.PhoneConfidence = envFloat("DEDUP_PHONE_CONFIDENCE", t.PhoneConfidence)
	t.PhoneticFloor = envFloat("DEDUP_PHONETIC_FLOOR", t.PhoneticFloor)
	t.AutoMergeConfidence = envFloat("DEDUP_AUTO_MERGE_CONFIDENCE", t.AutoMergeConfidence)
	t.NeedsReviewConfidence = envFloat("DEDUP_NEEDS_REVIEW_CONFIDENCE", t.NeedsReviewConfidence)
	t.MaxChainDepth = envInt("DEDUP_MAX_CHAIN_DEPTH", t.MaxChainDepth)

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Thresholds:  t,
	}
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		log.Printf("Warning: invalid %s=%q, using default %.2f", key, raw, fallback)
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

// dedupscan runs the full-population self-scan: every active candidate
// is compared against every earlier one and cross-duplicates are
// flagged. O(n²) in comparisons, so it is a batch job, not an API call.
//
// By default it only prints what it would flag; pass -dry-run=false to
// demote the flagged records.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"go.uber.org/zap"

	"candidate-dedup/internal/checker"
	"candidate-dedup/internal/config"
	"candidate-dedup/internal/dedup"
	"candidate-dedup/internal/storage"
)

const scanActor = "dedup-scan"

func main() {
	var dryRun bool
	var minConfidence float64
	flag.BoolVar(&dryRun, "dry-run", true, "If true, do not persist duplicate flags; just print them")
	flag.Float64Var(&minConfidence, "min-confidence", 0, "Only flag pairs at or above this confidence (0 uses the review threshold)")
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if minConfidence == 0 {
		minConfidence = cfg.Thresholds.ReviewThreshold
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to connect to db", "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.VerifySchema(ctx); err != nil {
		logger.Fatalw("schema check failed", "error", err)
	}

	chk := checker.NewChecker(db, cfg.Thresholds, logger)
	pairs, err := chk.SelfScan(ctx)
	if err != nil {
		logger.Fatalw("self-scan failed", "error", err)
	}

	flagged := 0
	for _, p := range pairs {
		if p.Match.Confidence < minConfidence {
			continue
		}
		flagged++
		logger.Infow("cross-duplicate",
			"duplicate", p.Duplicate.ID, "duplicate_name", p.Duplicate.FullName(),
			"primary", p.Primary.ID, "primary_name", p.Primary.FullName(),
			"match_type", p.Match.MatchType, "confidence", p.Match.Confidence,
			"dry_run", dryRun)
		if dryRun {
			continue
		}
		if err := db.MarkDuplicate(ctx, p.Duplicate.ID, p.Primary.ID, scanActor); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// resolved or deleted between scan and apply; skip
				logger.Warnw("record changed under scan, skipping", "id", p.Duplicate.ID)
				continue
			}
			logger.Fatalw("failed to mark duplicate", "id", p.Duplicate.ID, "error", err)
		}
	}
	logger.Infow("scan finished", "pairs", len(pairs), "flagged", flagged, "applied", !dryRun)

	if !dryRun && flagged > 0 {
		verifyForest(ctx, db, cfg.Thresholds, logger)
	}
}

// verifyForest re-reads the flagged state and walks every duplicate_of
// chain; a chain deeper than the configured cap means the forest
// invariant is broken and needs manual attention.
func verifyForest(ctx context.Context, db *storage.DB, cfg dedup.Thresholds, logger *zap.SugaredLogger) {
	live, err := db.ListAllLive(ctx)
	if err != nil {
		logger.Warnw("could not re-read candidates for chain check", "error", err)
		return
	}
	arena := make(map[string]*storage.Candidate, len(live))
	for _, c := range live {
		arena[c.ID] = c
	}
	engine := dedup.NewEngine(cfg)
	for _, c := range live {
		if c.DuplicateOf == nil {
			continue
		}
		if _, err := engine.ChainDepth(c.ID, arena); err != nil {
			logger.Errorw("duplicate chain invariant violated", "id", c.ID, "error", err)
		}
	}
}

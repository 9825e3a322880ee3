package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/database"
	"github.com/stemsi/exam-engine/internal/logger"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/service"
	"github.com/stemsi/exam-engine/internal/store"
)

func main() {
	var (
		file string
		keep bool
	)
	flag.StringVar(&file, "file", "", "YAML catalog to load (default: generated sample data)")
	flag.BoolVar(&keep, "keep", false, "Keep existing exams and questions instead of replacing them")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// ─── Build Catalog ─────────────────────────────────────────────────
	var (
		cat *catalog
		err error
	)
	if file != "" {
		cat, err = loadCatalogFile(file)
	} else {
		cat = defaultCatalog(rand.New(rand.NewSource(time.Now().UnixNano())))
		err = cat.validate()
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Invalid seed catalog")
	}

	// ─── Open Store ────────────────────────────────────────────────────
	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer stores.Close()

	var staleExams []model.ID
	if !keep {
		log.Info().Msg("Clearing old data...")
		staleExams, err = stores.Exams.DeleteAll(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to clear exams")
		}
		if err := stores.Questions.DeleteAll(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear questions")
		}
	}

	// ─── Write Catalog ─────────────────────────────────────────────────
	for i := range cat.Exams {
		if err := stores.Exams.Create(ctx, &cat.Exams[i]); err != nil {
			log.Fatal().Err(err).Str("title", cat.Exams[i].Title).Msg("Failed to create exam")
		}
		log.Info().
			Str("exam_id", cat.Exams[i].ID.String()).
			Str("title", cat.Exams[i].Title).
			Int("total_questions", cat.Exams[i].TotalQuestions).
			Msg("Exam created")
	}
	for i := range cat.Questions {
		if err := stores.Questions.Create(ctx, &cat.Questions[i]); err != nil {
			log.Fatal().Err(err).Int("index", i).Msg("Failed to create question")
		}
	}

	// ─── Drop Cached Exams ─────────────────────────────────────────────
	// Replaced exams would otherwise stay visible until the cache TTL.
	if len(staleExams) > 0 {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cached exams expire on their own")
		} else {
			defer rdb.Close()
			cache := service.NewCachedExamCatalog(stores.Exams, rdb, cfg.ExamCacheTTL, log)
			for _, id := range staleExams {
				if err := cache.Invalidate(ctx, id); err != nil {
					log.Warn().Err(err).Str("exam_id", id.String()).Msg("Failed to invalidate cached exam")
				}
			}
		}
	}

	log.Info().
		Str("store", stores.Driver).
		Int("exams", len(cat.Exams)).
		Int("questions", len(cat.Questions)).
		Msg("Seed complete")
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/config"
	"github.com/animica-labs/poies/internal/consensus"
	"github.com/animica-labs/poies/internal/ledger"
	"github.com/animica-labs/poies/internal/policy"
	"github.com/animica-labs/poies/internal/registry"
	"github.com/animica-labs/poies/internal/scoreapi"
	"github.com/animica-labs/poies/internal/settlement"
	"github.com/animica-labs/poies/internal/telemetry"
	"github.com/animica-labs/poies/internal/utils/logger"
	"github.com/animica-labs/poies/internal/utils/redis"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting poiesd...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.PolicyPath).Msg("failed to load scoring policy")
	}

	reg, err := registry.NewClient(&cfg.RegistryEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init registry client")
	}

	led, err := ledger.NewClient(&cfg.LedgerEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init ledger client")
	}

	r, err := redis.NewRedis(&cfg.RedisEnvConfig)
	if err != nil {
		log.Error().Err(err).Msg("failed to init redis client, continuing without redis")
		r = nil
	}

	tel := telemetry.New()

	evaluator, err := consensus.NewEvaluator(pol)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init acceptance evaluator")
	}

	var cache redis.RedisInterface
	if r != nil {
		cache = r
	}

	engine, err := settlement.NewEngine(
		reg,
		led,
		cache,
		pol,
		tel,
		config.NewIntervalConfig(cfg.Environment),
		cfg.EpochRecordDir,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init settlement engine")
	}

	server := scoreapi.NewServer(scoreapi.Config{
		Address:       fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		BodySizeLimit: cfg.BodySizeLimit,
	}, pol, evaluator, reg, tel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Start()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutdown signal received, stopping settlement engine")
		engine.Stop()
	}()

	if err := server.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	<-engine.Ctx.Done()
	log.Info().Msg("poiesd stopped")
}

package settlement

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/config"
	"github.com/animica-labs/poies/internal/ledger"
	"github.com/animica-labs/poies/internal/policy"
	"github.com/animica-labs/poies/internal/registry"
	"github.com/animica-labs/poies/internal/scoring"
	"github.com/animica-labs/poies/internal/telemetry"
	"github.com/animica-labs/poies/internal/utils/redis"
)

const recordCacheTTL = 24 * time.Hour

// Engine runs the periodic settlement: fetch epoch metrics, run the
// allocation pipeline, split the pool, persist and anchor the record.
type Engine struct {
	Registry  registry.RegistryInterface
	Ledger    ledger.LedgerInterface
	Cache     redis.RedisInterface
	Policy    *policy.Policy
	Telemetry *telemetry.Telemetry

	IntervalConfig *config.IntervalConfig
	RecordDir      string

	epoch atomic.Uint64

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup
}

func NewEngine(
	reg registry.RegistryInterface,
	led ledger.LedgerInterface,
	cache redis.RedisInterface,
	pol *policy.Policy,
	tel *telemetry.Telemetry,
	intervals *config.IntervalConfig,
	recordDir string,
) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if pol == nil {
		return nil, fmt.Errorf("policy cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		Registry:       reg,
		Ledger:         led,
		Cache:          cache,
		Policy:         pol,
		Telemetry:      tel,
		IntervalConfig: intervals,
		RecordDir:      recordDir,
		Ctx:            ctx,
		Cancel:         cancel,
	}, nil
}

// runTicker runs a function periodically until the provided context is
// canceled. fn runs in its own goroutine so the loop can exit quickly.
func (e *Engine) runTicker(ctx context.Context, d time.Duration, fn func()) {
	defer e.Wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go fn()
		}
	}
}

// Start kicks off the periodic settlement routine.
func (e *Engine) Start() {
	e.Wg.Add(1)
	go e.runTicker(e.Ctx, e.IntervalConfig.SettlementInterval, func() {
		epoch := e.epoch.Add(1)
		started := time.Now()
		record, err := e.SettleEpoch(epoch)
		if e.Telemetry != nil {
			providers := 0
			if err == nil {
				providers = len(record.Providers)
			}
			e.Telemetry.ObserveSettlement(epoch, providers, time.Since(started), err)
		}
		if err != nil {
			log.Error().Err(err).Uint64("epoch", epoch).Msg("settlement failed")
		}
	})
}

// Stop cancels background routines and waits for them to finish.
func (e *Engine) Stop() {
	if e.Cancel != nil {
		e.Cancel()
	}
	e.Wg.Wait()
}

// SettleEpoch runs one full settlement pass and returns the persisted
// record.
func (e *Engine) SettleEpoch(epoch uint64) (*EpochRecord, error) {
	metrics, err := e.Registry.FetchEpochMetrics(epoch)
	if err != nil {
		return nil, fmt.Errorf("fetch epoch metrics: %w", err)
	}

	matrix, providers, err := registry.BuildMatrix(metrics.Snapshots, e.Policy.MetricNames())
	if err != nil {
		return nil, fmt.Errorf("build metric matrix: %w", err)
	}

	allocator, err := e.Policy.Allocator()
	if err != nil {
		return nil, err
	}

	result, err := allocator.Allocate(matrix)
	if err != nil {
		return nil, fmt.Errorf("allocate shares: %w", err)
	}

	uncappedMicro := scoring.QuantizeShares(result.Uncapped)
	cappedMicro := scoring.QuantizeShares(result.Capped)

	pool, err := uint256.FromDecimal(e.Policy.Settlement.PoolMicro)
	if err != nil {
		return nil, fmt.Errorf("parse pool amount: %w", err)
	}

	payouts, treasury, err := SplitPool(pool, e.Policy.Settlement.TreasuryBps, cappedMicro)
	if err != nil {
		return nil, fmt.Errorf("split pool: %w", err)
	}

	fairness, err := scoring.AnalyzeFairness(result.Capped, e.Policy.Scoring.TopK)
	if err != nil {
		return nil, fmt.Errorf("analyze fairness: %w", err)
	}
	if e.Telemetry != nil {
		e.Telemetry.ObserveFairness(fairness)
	}

	record := &EpochRecord{
		Epoch:       epoch,
		Pool:        pool.Dec(),
		TreasuryBps: e.Policy.Settlement.TreasuryBps,
		Treasury:    treasury.Dec(),
		Providers:   make([]ProviderPayout, len(providers)),
		Fairness:    fairness,
		SettledAt:   time.Now().Unix(),
	}
	for i, provider := range providers {
		record.Providers[i] = ProviderPayout{
			Provider:      provider,
			UncappedMicro: uncappedMicro[i],
			CappedMicro:   cappedMicro[i],
			Payout:        payouts[i].Dec(),
		}
	}

	if e.Ledger != nil {
		receipt, err := e.Ledger.AnchorSettlement(record)
		if err != nil {
			// The record is still valid without an anchor; the next epoch
			// can re-anchor it.
			log.Error().Err(err).Uint64("epoch", epoch).Msg("failed to anchor settlement")
		} else {
			record.AnchorTx = receipt.TxHash
		}
	}

	if e.RecordDir != "" {
		if err := record.Write(e.RecordDir); err != nil {
			return nil, err
		}
	}

	if e.Cache != nil {
		data, err := sonic.MarshalString(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record for cache: %w", err)
		}
		if err := e.Cache.Set(e.Ctx, CacheKey(epoch), data, recordCacheTTL); err != nil {
			log.Error().Err(err).Uint64("epoch", epoch).Msg("failed to cache settlement record")
		}
	}

	log.Info().
		Uint64("epoch", epoch).
		Int("providers", len(providers)).
		Str("treasury", record.Treasury).
		Float64("gini", fairness.Gini).
		Msg("epoch settled")

	return record, nil
}

package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"borrowbot/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DefaultPricePollInterval is the pause between two oracle polls
const DefaultPricePollInterval = 5 * time.Second

// PriceOracleCache keeps the last known price in memory and mirrors it to the shared store.
// A failed poll never clears a known price.
type PriceOracleCache struct {
	oracle   PriceOracle
	store    PriceStore
	metrics  Metrics
	symbol   string
	interval time.Duration
	now      func() time.Time

	current atomic.Pointer[models.PriceSnapshot]
}

// NewPriceOracleCache creates a price cache polling symbol from oracle
func NewPriceOracleCache(oracle PriceOracle, store PriceStore, metrics Metrics, symbol string) *PriceOracleCache {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &PriceOracleCache{
		oracle:   oracle,
		store:    store,
		metrics:  metrics,
		symbol:   symbol,
		interval: DefaultPricePollInterval,
		now:      time.Now,
	}
}

// CurrentPrice returns the last known price, if any
func (c *PriceOracleCache) CurrentPrice() (decimal.Decimal, bool) {
	snapshot := c.current.Load()
	if snapshot == nil {
		return decimal.Zero, false
	}
	return snapshot.Value, true
}

// Snapshot returns the last known price with its timestamp, or nil
func (c *PriceOracleCache) Snapshot() *models.PriceSnapshot {
	return c.current.Load()
}

// Warm seeds the cache from the shared store so a restart does not close the price gate
func (c *PriceOracleCache) Warm(ctx context.Context) {
	snapshot, err := c.store.LoadPrice(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to load persisted price")
		return
	}
	if snapshot == nil || !snapshot.Value.IsPositive() {
		log.Info("No persisted price available")
		return
	}

	c.current.CompareAndSwap(nil, snapshot)
	log.WithFields(log.Fields{
		"price":     snapshot.Value.String(),
		"updatedAt": snapshot.UpdatedAt,
	}).Info("Loaded persisted price")
}

// Poll runs one fetch and persist iteration
func (c *PriceOracleCache) Poll(ctx context.Context) {
	if err := c.refresh(ctx); err != nil {
		c.metrics.RecordPricePoll(ctx, OutcomeFailed)
		log.WithFields(log.Fields{
			"symbol": c.symbol,
			"error":  err,
		}).Warn("Price poll failed, keeping previous value")
	} else {
		c.metrics.RecordPricePoll(ctx, OutcomeSuccess)
	}

	snapshot := c.current.Load()
	if snapshot == nil {
		return
	}
	if err := c.store.SavePrice(ctx, *snapshot); err != nil {
		log.WithFields(log.Fields{
			"symbol": c.symbol,
			"error":  err,
		}).Warn("Failed to persist price")
	}
}

func (c *PriceOracleCache) refresh(ctx context.Context) error {
	price, err := c.oracle.FetchPrice(ctx, c.symbol)
	if err != nil {
		return err
	}
	if !price.IsPositive() {
		return fmt.Errorf("non-positive price %s", price)
	}

	c.current.Store(&models.PriceSnapshot{
		Value:     price,
		UpdatedAt: c.now().UTC(),
	})
	return nil
}

// Run polls until ctx is cancelled
func (c *PriceOracleCache) Run(ctx context.Context) error {
	log.WithFields(log.Fields{
		"symbol":   c.symbol,
		"interval": c.interval,
	}).Info("Price oracle cache started")

	for {
		c.Poll(ctx)

		if err := Sleep(ctx, c.interval); err != nil {
			log.Info("Price oracle cache stopped")
			return err
		}
	}
}

package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for the sync scheduler.
type SchedulerConfig struct {
	// ReconcileInterval is how often order reconciliation runs.
	// Default: 45 seconds
	ReconcileInterval time.Duration

	// RefreshInterval is how often the catalog is refreshed.
	// Default: 5 minutes
	RefreshInterval time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ReconcileInterval: 45 * time.Second,
		RefreshInterval:   5 * time.Minute,
	}
}

// SyncScheduler runs periodic order reconciliation and catalog refresh.
// Each tick is an independent, idempotent attempt; failed ticks are not
// backed off, the services themselves drop overlapping runs.
type SyncScheduler struct {
	orders  *OrderService
	catalog *CatalogService
	config  SchedulerConfig

	reconcileTicker *time.Ticker
	refreshTicker   *time.Ticker
	stopCh          chan struct{}
	stopOnce        sync.Once
	isRunning       bool
	mu              sync.Mutex
}

// NewSyncScheduler creates a new sync scheduler.
func NewSyncScheduler(orders *OrderService, catalog *CatalogService, config SchedulerConfig) *SyncScheduler {
	if config.ReconcileInterval == 0 {
		config.ReconcileInterval = 45 * time.Second
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = 5 * time.Minute
	}

	return &SyncScheduler{
		orders:  orders,
		catalog: catalog,
		config:  config,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the scheduler. Reconciliation runs once immediately.
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.reconcileTicker = time.NewTicker(s.config.ReconcileInterval)
	s.refreshTicker = time.NewTicker(s.config.RefreshInterval)
	s.mu.Unlock()

	log.Printf("[SyncScheduler] Started - reconcile: %v, refresh: %v",
		s.config.ReconcileInterval, s.config.RefreshInterval)

	go func() {
		s.runReconcile()
	}()

	go s.run()
}

// run is the main scheduler loop.
func (s *SyncScheduler) run() {
	for {
		select {
		case <-s.reconcileTicker.C:
			s.runReconcile()
		case <-s.refreshTicker.C:
			s.runRefresh()
		case <-s.stopCh:
			log.Printf("[SyncScheduler] Stopped")
			return
		}
	}
}

func (s *SyncScheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.orders.Reconcile(ctx); err != nil {
		log.Printf("[SyncScheduler] Reconcile tick failed: %v", err)
	}
}

func (s *SyncScheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.catalog.Refresh(ctx); err != nil {
		log.Printf("[SyncScheduler] Catalog refresh tick failed: %v", err)
	}
}

// Stop stops the scheduler.
func (s *SyncScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.reconcileTicker != nil {
			s.reconcileTicker.Stop()
		}
		if s.refreshTicker != nil {
			s.refreshTicker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate reconcile, used by the admin refresh
// endpoint.
func (s *SyncScheduler) RunNow(ctx context.Context) error {
	return s.orders.Reconcile(ctx)
}

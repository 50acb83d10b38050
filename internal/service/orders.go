package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/remote"
	"autohub-rest-api/internal/store"
	"autohub-rest-api/pkg/uid"
)

// ErrOrderNotFound is returned for operations on an unknown order id.
var ErrOrderNotFound = errors.New("order not found")

// OrderService keeps the local order list consistent with the dealer
// platform under an unreliable network, with the snapshot store as the
// durability fallback. A customer-submitted order is never silently lost:
// it is persisted locally before the first remote attempt and re-published
// on later reconcile passes until the platform confirms it.
type OrderService struct {
	snapshots *store.Snapshots
	remote    remote.API

	mu            sync.Mutex
	orders        []model.Order
	reconciling   bool
	lastReconcile time.Time
	lastErr       string
}

// NewOrderService creates the order reconciliation engine.
// Returns nil if either dependency is nil.
func NewOrderService(snapshots *store.Snapshots, remoteAPI remote.API) *OrderService {
	if snapshots == nil || remoteAPI == nil {
		return nil
	}
	return &OrderService{
		snapshots: snapshots,
		remote:    remoteAPI,
	}
}

// Start loads the persisted order list into memory.
func (s *OrderService) Start(ctx context.Context) {
	orders, err := s.snapshots.LoadOrders(ctx)
	if err != nil {
		if err != store.ErrNotFound {
			log.Printf("[OrderService] Failed to load order snapshot: %v", err)
		}
		return
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	log.Printf("[OrderService] Loaded %d orders from local snapshot", len(orders))
}

// List returns a copy of the current order list.
func (s *OrderService) List() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Get returns a single order by id.
func (s *OrderService) Get(id string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			o := s.orders[i]
			return &o, true
		}
	}
	return nil, false
}

// Create validates and stores a purchase inquiry. The order is persisted
// locally with sync_status=pending before the first remote attempt, then
// marked synced or failed depending on the outcome. It is kept locally
// either way.
func (s *OrderService) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if order.ID == "" {
		order.ID = uid.New()
	}
	order.Status = model.OrderStatusNew
	order.SyncStatus = model.SyncPending
	order.RemoteRef = ""
	order.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.orders = append(s.orders, *order)
	snapshot := s.copyLocked()
	s.mu.Unlock()
	s.snapshots.SaveOrders(ctx, snapshot)

	created, err := s.remote.CreateOrder(ctx, order)

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID != order.ID {
			continue
		}
		if err != nil {
			s.orders[i].SyncStatus = model.SyncFailed
			log.Printf("[OrderService] Order %s kept locally, remote create failed: %v", order.ID, err)
		} else {
			s.orders[i].SyncStatus = model.SyncSynced
			s.orders[i].RemoteRef = created.ID
		}
		*order = s.orders[i]
		break
	}
	snapshot = s.copyLocked()
	s.mu.Unlock()
	s.snapshots.SaveOrders(ctx, snapshot)

	return order, nil
}

// SetStatus applies a status change locally first (sync_status=pending,
// persisted immediately), then attempts to push it to the platform. A
// failed push leaves the change retained locally as failed, eligible for
// re-publishing on the next reconcile pass.
func (s *OrderService) SetStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, errors.New("unknown order status")
	}

	s.mu.Lock()
	var remoteID string
	found := false
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			s.orders[i].SyncStatus = model.SyncPending
			remoteID = s.orders[i].RemoteRef
			found = true
			break
		}
	}
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if !found {
		return nil, ErrOrderNotFound
	}
	s.snapshots.SaveOrders(ctx, snapshot)

	if remoteID == "" {
		remoteID = id
	}
	err := s.remote.SetOrderStatus(ctx, remoteID, status)

	var result model.Order
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if err != nil {
			s.orders[i].SyncStatus = model.SyncFailed
			log.Printf("[OrderService] Status change for %s retained locally, remote update failed: %v", id, err)
		} else {
			s.orders[i].SyncStatus = model.SyncSynced
		}
		result = s.orders[i]
		break
	}
	snapshot = s.copyLocked()
	s.mu.Unlock()
	s.snapshots.SaveOrders(ctx, snapshot)

	return &result, nil
}

// Delete removes an order. An order the platform knows about is deleted
// remotely first; a local-only record is removed directly.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	var remoteRef string
	found := false
	for i := range s.orders {
		if s.orders[i].ID == id {
			remoteRef = s.orders[i].RemoteRef
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrOrderNotFound
	}

	if remoteRef != "" {
		if err := s.remote.DeleteOrder(ctx, remoteRef); err != nil && !errors.Is(err, remote.ErrNotFound) {
			return err
		}
	}

	s.mu.Lock()
	out := s.orders[:0]
	for i := range s.orders {
		if s.orders[i].ID != id {
			out = append(out, s.orders[i])
		}
	}
	s.orders = out
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.snapshots.SaveOrders(ctx, snapshot)
	return nil
}

// Reconcile merges local and remote order state into one consistent view.
// Single-flight: a tick that finds one in progress is dropped. Each run is
// an independent, idempotent attempt; there is no backoff.
//
// When the platform is reachable and returns data, the remote collection
// is authoritative - except that local records the platform has not
// confirmed (pending/failed) are re-published, never discarded. When the
// platform is unreachable, or returns nothing while local history exists,
// the engine falls back to re-publishing unconfirmed local orders.
func (s *OrderService) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	if s.reconciling {
		s.mu.Unlock()
		return nil
	}
	s.reconciling = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reconciling = false
		s.mu.Unlock()
	}()

	remoteOrders, err := s.remote.ListOrders(ctx)

	s.mu.Lock()
	local := s.copyLocked()
	s.mu.Unlock()

	if err != nil || (len(remoteOrders) == 0 && len(local) > 0) {
		if err != nil {
			log.Printf("[OrderService] Reconcile: remote fetch failed, re-publishing local orders: %v", err)
			s.setLastError("order sync unavailable, using local history")
		}
		s.republish(ctx)
		return err
	}

	// Remote is the source of truth when reachable. Records without a
	// sync status predate this engine and are treated as confirmed.
	merged := make([]model.Order, 0, len(remoteOrders))
	confirmed := make(map[string]struct{}, len(remoteOrders))
	for _, ro := range remoteOrders {
		if ro.SyncStatus == "" {
			ro.SyncStatus = model.SyncSynced
		}
		if ro.RemoteRef == "" {
			ro.RemoteRef = ro.ID
		}
		merged = append(merged, ro)
		confirmed[ro.ID] = struct{}{}
		confirmed[ro.RemoteRef] = struct{}{}
	}

	// Unconfirmed local orders are re-published, not overwritten. A record
	// the platform already knows gets its local status pushed and the
	// merged copy updated; a record it never saw is created and appended.
	for i := range local {
		lo := local[i]
		if lo.SyncStatus == model.SyncSynced {
			continue
		}

		ref := lo.RemoteRef
		if _, ok := confirmed[lo.ID]; ok && ref == "" {
			ref = lo.ID
		}
		if ref != "" {
			if _, ok := confirmed[ref]; ok {
				lo.RemoteRef = ref
				s.publishOne(ctx, &lo)
				for j := range merged {
					if merged[j].ID == ref || merged[j].RemoteRef == ref {
						merged[j].Status = lo.Status
						merged[j].SyncStatus = lo.SyncStatus
						break
					}
				}
				continue
			}
		}

		s.publishOne(ctx, &lo)
		merged = append(merged, lo)
	}

	s.mu.Lock()
	s.orders = merged
	s.lastReconcile = time.Now().UTC()
	s.lastErr = ""
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.snapshots.SaveOrders(ctx, snapshot)
	s.snapshots.SaveOrdersCSV(ctx, OrdersCSV(snapshot))

	log.Printf("[OrderService] Reconciled %d orders (%d from platform)", len(merged), len(remoteOrders))
	return nil
}

// republish attempts to persist every unconfirmed local order remotely,
// marking each synced or failed, and keeping it locally regardless.
func (s *OrderService) republish(ctx context.Context) {
	s.mu.Lock()
	pending := make([]model.Order, 0)
	for i := range s.orders {
		if s.orders[i].SyncStatus != model.SyncSynced {
			pending = append(pending, s.orders[i])
		}
	}
	s.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	for i := range pending {
		s.publishOne(ctx, &pending[i])
	}

	s.mu.Lock()
	for i := range s.orders {
		for j := range pending {
			if s.orders[i].ID == pending[j].ID {
				s.orders[i] = pending[j]
			}
		}
	}
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.snapshots.SaveOrders(ctx, snapshot)
}

// publishOne pushes a single unconfirmed order to the platform: a record
// the platform never saw is created, a known one gets its status pushed.
func (s *OrderService) publishOne(ctx context.Context, o *model.Order) {
	if o.RemoteRef == "" {
		created, err := s.remote.CreateOrder(ctx, o)
		if err != nil {
			o.SyncStatus = model.SyncFailed
			return
		}
		o.SyncStatus = model.SyncSynced
		o.RemoteRef = created.ID
		return
	}

	if err := s.remote.SetOrderStatus(ctx, o.RemoteRef, o.Status); err != nil {
		o.SyncStatus = model.SyncFailed
		return
	}
	o.SyncStatus = model.SyncSynced
}

// LastReconcile returns when the last successful reconcile finished.
func (s *OrderService) LastReconcile() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReconcile
}

// LastError returns the user-facing message of the last failed reconcile,
// empty when the last reconcile succeeded.
func (s *OrderService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SyncStats returns the order count per sync status for the admin
// dashboard.
func (s *OrderService) SyncStats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]int{"total": len(s.orders)}
	for i := range s.orders {
		stats[string(s.orders[i].SyncStatus)]++
	}
	return stats
}

func (s *OrderService) setLastError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// copyLocked returns a copy of the order list. Caller must hold mu.
func (s *OrderService) copyLocked() []model.Order {
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

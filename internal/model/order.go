package model

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the processing state of a purchase inquiry.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// SyncStatus tells whether the last known state of an order has been
// durably confirmed by the dealer platform.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// MaxOrderImageBytes bounds the embedded data-URI image of an order.
const MaxOrderImageBytes = 2 << 20

// Order is a purchase inquiry. CarID may reference a listing that no
// longer exists; that is tolerated, not treated as corruption.
type Order struct {
	ID            string      `json:"id"`
	CarID         string      `json:"car_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	Message       string      `json:"message,omitempty"`
	Image         string      `json:"image,omitempty"` // data URI, size-bounded
	Status        OrderStatus `json:"status"`
	SyncStatus    SyncStatus  `json:"sync_status"`
	RemoteRef     string      `json:"remote_ref,omitempty"` // id assigned by the platform
	CreatedAt     time.Time   `json:"created_at"`
}

// Validate checks the fields a customer submits before any network call.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return fmt.Errorf("customer name is required")
	}
	if strings.TrimSpace(o.CustomerPhone) == "" {
		return fmt.Errorf("customer phone is required")
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("unknown order status %q", o.Status)
	}
	if o.Image != "" {
		if !strings.HasPrefix(o.Image, "data:image/") {
			return fmt.Errorf("order image must be a data URI")
		}
		if len(o.Image) > MaxOrderImageBytes {
			return fmt.Errorf("order image exceeds %d bytes", MaxOrderImageBytes)
		}
	}
	return nil
}

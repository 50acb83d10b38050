package service

import (
	"encoding/csv"
	"strings"
	"time"

	"autohub-rest-api/internal/model"
)

// ordersCSVHeader is the header row of the denormalized order mirror.
var ordersCSVHeader = []string{
	"id", "car_id", "customer_name", "customer_phone", "customer_email",
	"message", "status", "sync_status", "remote_ref", "created_at",
}

// OrdersCSV renders the order collection as a flat CSV document with a
// header row and RFC 4180 quoting. It is regenerated on every successful
// reconcile as a human-inspectable backup independent of the JSON
// snapshot.
func OrdersCSV(orders []model.Order) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write(ordersCSVHeader)
	for i := range orders {
		o := &orders[i]
		w.Write([]string{
			o.ID,
			o.CarID,
			o.CustomerName,
			o.CustomerPhone,
			o.CustomerEmail,
			o.Message,
			string(o.Status),
			string(o.SyncStatus),
			o.RemoteRef,
			o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()

	return sb.String()
}

package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autohub-rest-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestClient_ListCars(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cars", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []model.Car{
				{ID: "c1", Brand: "Toyota", Model: "Camry"},
				{ID: "c2", Brand: "BMW", Model: "X5"},
			},
		})
	})

	cars, err := client.ListCars(context.Background())
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, "Camry", cars[0].Model)
}

func TestClient_EnvelopeFailureBecomesRemoteError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "catalog is being rebuilt",
		})
	})

	_, err := client.ListCars(context.Background())
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "catalog is being rebuilt", remoteErr.Message)
}

func TestClient_GetCarAbsentIsNilNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Platforms serve 404s with arbitrary bodies; the status wins.
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html>not found</html>"))
	})

	car, err := client.GetCar(context.Background(), "gone")
	assert.NoError(t, err)
	assert.Nil(t, car)
}

func TestClient_DeleteOrderNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.DeleteOrder(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_CreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var order model.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, "Ivan", order.CustomerName)

		order.ID = "r-42"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": order})
	})

	created, err := client.CreateOrder(context.Background(), &model.Order{
		CustomerName:  "Ivan",
		CustomerPhone: "+79160000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "r-42", created.ID)
}

func TestClient_SetOrderStatusBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/r-1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "completed", body["status"])

		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	err := client.SetOrderStatus(context.Background(), "r-1", model.OrderStatusCompleted)
	assert.NoError(t, err)
}

func TestClient_ServerErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "database offline",
		})
	})

	_, err := client.ListOrders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
}

func TestClient_TimeoutExpires(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	client.timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := client.ListCars(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "the deadline must cut the call short")
}

func TestClient_NonJSONResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>load balancer error page</html>"))
	})

	_, err := client.ListCars(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response")
}

func TestClient_ImportCars(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cars/import", r.URL.Path)

		var cars []model.Car
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cars))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": ImportResult{
				Imported: len(cars) - 1,
				Errors:   []string{"duplicate listing skipped"},
			},
		})
	})

	result, err := client.ImportCars(context.Background(), []model.Car{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 1)
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"autohub-rest-api/internal/model"
)

// API is the facade over the dealer-platform service. Every operation is
// a single attempt with an explicit deadline; retry policy lives in the
// caller (the reconciler).
type API interface {
	ListCars(ctx context.Context) ([]model.Car, error)
	GetCar(ctx context.Context, id string) (*model.Car, error)
	CreateCar(ctx context.Context, car *model.Car) (*model.Car, error)
	UpdateCar(ctx context.Context, car *model.Car) (*model.Car, error)
	DeleteCar(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]model.Order, error)
	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)
	SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error

	GetSettings(ctx context.Context, group string) (*model.SettingsGroup, error)
	UpdateSettings(ctx context.Context, sg *model.SettingsGroup) error

	ImportCars(ctx context.Context, cars []model.Car) (*ImportResult, error)
	UploadImage(ctx context.Context, filename string, data []byte) (*model.CarImage, error)
	AssignImage(ctx context.Context, carID, imageID string) error
}

// ImportResult is the platform's answer to a bulk catalog import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// ErrNotFound indicates the platform has no such resource.
var ErrNotFound = fmt.Errorf("remote: not found")

// RemoteError is a domain-level failure: the platform answered 2xx but
// flagged success=false. Callers treat it like a transport error.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %s", e.Op, e.Message)
}

// envelope is the platform's uniform response shape. The success
// discriminant is checked once here, never in callers.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Config holds remote client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the HTTP implementation of API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a dealer-platform client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{},
	}
}

// do performs one request with a deadline and decodes the envelope.
// A hung platform call expires into the same recovery path as a network
// failure.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	return c.decode(op, resp, out)
}

func (c *Client) decode(op string, resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: unexpected response (status %d): %w", op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if env.Message != "" {
			return &RemoteError{Op: op, Message: env.Message}
		}
		return fmt.Errorf("%s: remote returned status %d", op, resp.StatusCode)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "unspecified failure"
		}
		return &RemoteError{Op: op, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: failed to decode payload: %w", op, err)
		}
	}
	return nil
}

// ListCars fetches the full remote catalog.
func (c *Client) ListCars(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	if err := c.do(ctx, "list cars", http.MethodGet, "/cars", nil, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// GetCar fetches a single listing. An absent listing returns (nil, nil).
func (c *Client) GetCar(ctx context.Context, id string) (*model.Car, error) {
	var car model.Car
	err := c.do(ctx, "get car", http.MethodGet, "/cars/"+id, nil, &car)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &car, nil
}

// CreateCar creates a listing on the platform.
func (c *Client) CreateCar(ctx context.Context, car *model.Car) (*model.Car, error) {
	var created model.Car
	if err := c.do(ctx, "create car", http.MethodPost, "/cars", car, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCar replaces a listing on the platform. Whole-record replacement,
// no partial writes.
func (c *Client) UpdateCar(ctx context.Context, car *model.Car) (*model.Car, error) {
	var updated model.Car
	if err := c.do(ctx, "update car", http.MethodPut, "/cars/"+car.ID, car, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCar removes a listing from the platform.
func (c *Client) DeleteCar(ctx context.Context, id string) error {
	return c.do(ctx, "delete car", http.MethodDelete, "/cars/"+id, nil, nil)
}

// ListOrders fetches the remote order collection.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, "list orders", http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder persists an order on the platform and returns the stored copy.
func (c *Client) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	var created model.Order
	if err := c.do(ctx, "create order", http.MethodPost, "/orders", order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SetOrderStatus updates an order's status on the platform.
func (c *Client) SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, "set order status", http.MethodPut, "/orders/"+id+"/status", body, nil)
}

// DeleteOrder removes an order from the platform.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, "delete order", http.MethodDelete, "/orders/"+id, nil, nil)
}

// GetSettings fetches a settings group.
func (c *Client) GetSettings(ctx context.Context, group string) (*model.SettingsGroup, error) {
	var sg model.SettingsGroup
	if err := c.do(ctx, "get settings", http.MethodGet, "/settings/"+group, nil, &sg); err != nil {
		return nil, err
	}
	return &sg, nil
}

// UpdateSettings pushes a settings group.
func (c *Client) UpdateSettings(ctx context.Context, sg *model.SettingsGroup) error {
	return c.do(ctx, "update settings", http.MethodPut, "/settings/"+sg.Group, sg, nil)
}

// ImportCars pushes a normalized scraped batch to the platform bulk
// import endpoint.
func (c *Client) ImportCars(ctx context.Context, cars []model.Car) (*ImportResult, error) {
	var result ImportResult
	if err := c.do(ctx, "import cars", http.MethodPost, "/cars/import", cars, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadImage uploads an image file via multipart and returns the stored
// image reference.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (*model.CarImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("upload image: failed to build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("upload image: failed to write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload image: failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images", &buf)
	if err != nil {
		return nil, fmt.Errorf("upload image: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload image: request failed: %w", err)
	}
	defer resp.Body.Close()

	var img model.CarImage
	if err := c.decode("upload image", resp, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// AssignImage binds an uploaded image to a listing.
func (c *Client) AssignImage(ctx context.Context, carID, imageID string) error {
	body := map[string]string{"image_id": imageID}
	return c.do(ctx, "assign image", http.MethodPost, "/cars/"+carID+"/images", body, nil)
}

// Ensure Client implements API
var _ API = (*Client)(nil)

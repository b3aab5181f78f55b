package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"revamp/pkg/model"
)

// BookingServiceClient is the typed client for the downstream booking
// service. The gateway uses it for availability resync and health probes;
// everything else goes through the raw passthrough proxy.
type BookingServiceClient struct {
	httpClient *HttpClient
}

// The booking service mounts its API under /api/bookings; only the health
// endpoint lives at the service root.
const bookingAPIPrefix = "/api/bookings"

func NewBookingServiceClient(baseURL string, timeout time.Duration) *BookingServiceClient {
	return &BookingServiceClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

// ListAppointments fetches active appointments between from and to inclusive,
// both formatted as YYYY-MM-DD.
func (c *BookingServiceClient) ListAppointments(ctx context.Context, from, to string) ([]model.Appointment, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	resp, err := c.httpClient.GET(ctx, bookingAPIPrefix+"/appointments?"+q.Encode())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("booking service returned status %d", resp.StatusCode)
	}

	return decodeAppointments(resp)
}

// Some deployments wrap list responses in {"data": [...]}, older ones return
// the bare array. Accept both.
func decodeAppointments(resp *Response) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := resp.DecodeJSON(&appointments); err == nil {
		return appointments, nil
	}

	var wrapper struct {
		Data []model.Appointment `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode appointment list: %w", err)
	}
	return wrapper.Data, nil
}

// Ping reports whether the booking service answers its health endpoint.
func (c *BookingServiceClient) Ping(ctx context.Context) error {
	resp, err := c.httpClient.GET(ctx, "/health")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("booking service health returned status %d", resp.StatusCode)
	}
	return nil
}

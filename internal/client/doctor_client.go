// Package client is the HTTP client for /api/doctors/search used by the views.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

const searchPath = "/api/doctors/search"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 4 << 20

var (
	// ErrUnavailable wraps transport failures (connection refused, timeout).
	ErrUnavailable = errors.New("doctor api unavailable")
	// ErrStatus wraps non-success HTTP statuses; see StatusError for the code.
	ErrStatus = errors.New("doctor api returned non-success status")
)

// StatusError carries the status of a failed call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("doctor api status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// DoctorClient talks to the doctor REST API
type DoctorClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a DoctorClient.
type Option func(*DoctorClient)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *DoctorClient) { c.token = token }
}

// WithHTTPClient replaces the default client (5s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *DoctorClient) { c.httpClient = hc }
}

// NewDoctorClient creates a client for the API rooted at baseURL.
func NewDoctorClient(baseURL string, timeout time.Duration, opts ...Option) *DoctorClient {
	c := &DoctorClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetDoctor fetches one doctor. A 404 or an empty body yields (nil, nil).
func (c *DoctorClient) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	body, err := c.do(ctx, http.MethodGet, url.Values{"id": {id}})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	doctors, err := decodeDoctors(body)
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return nil, nil
	}
	return &doctors[0], nil
}

// SearchDoctors runs a free-text search. A single-object response is
// normalized to a one-element list.
func (c *DoctorClient) SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error) {
	body, err := c.do(ctx, http.MethodGet, url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return decodeDoctors(body)
}

// DeleteDoctor removes a doctor; any non-2xx status is an error.
func (c *DoctorClient) DeleteDoctor(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, url.Values{"id": {id}})
	return err
}

func (c *DoctorClient) do(ctx context.Context, method string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, searchPath, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}

// decodeDoctors accepts an array, a single object, or an empty/null body.
func decodeDoctors(body []byte) ([]domain.Doctor, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []domain.Doctor{}, nil
	}

	if body[0] == '[' {
		var doctors []domain.Doctor
		if err := json.Unmarshal(body, &doctors); err != nil {
			return nil, fmt.Errorf("decode doctors: %w", err)
		}
		if doctors == nil {
			doctors = []domain.Doctor{}
		}
		return doctors, nil
	}

	var doctor domain.Doctor
	if err := json.Unmarshal(body, &doctor); err != nil {
		return nil, fmt.Errorf("decode doctor: %w", err)
	}
	if doctor.ID == "" {
		return []domain.Doctor{}, nil
	}
	return []domain.Doctor{doctor}, nil
}

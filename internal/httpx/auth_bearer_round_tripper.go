package httpx

import (
	"fmt"
	"net/http"
	"time"
)

// AuthBearerRoundTripper sets a static bearer token on every request.
// An empty token leaves requests unauthenticated.
type AuthBearerRoundTripper struct {
	next  http.RoundTripper
	token string
}

func NewAuthBearerRoundTripper(next http.RoundTripper, token string) AuthBearerRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return AuthBearerRoundTripper{
		next:  next,
		token: token,
	}
}

func (rt AuthBearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.token != "" {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+rt.token)
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}
	return resp, nil
}

// NewClient returns an HTTP client that authenticates with token (if any),
// logs traffic at debug level and gives up after timeout.
func NewClient(timeout time.Duration, token string, opts ...Option) *http.Client {
	var rt http.RoundTripper = NewLoggingRoundTripper(http.DefaultTransport, opts...)
	rt = NewAuthBearerRoundTripper(rt, token)
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}

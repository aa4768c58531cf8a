package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rs/xid"

	"github.com/anatolykoptev/go-cleanscore/internal/logging"
)

type sensitiveDataMasker interface {
	Mask([]byte) []byte
}

// LoggingRoundTripper implements http.RoundTripper and dumps every request
// and response at debug level. Nothing is dumped unless debug is enabled.
type LoggingRoundTripper struct {
	next                http.RoundTripper
	logger              *slog.Logger
	sensitiveDataMasker sensitiveDataMasker
	logFieldMaxLen      int
}

// NewLoggingRoundTripper returns a new logging RoundTripper instance.
func NewLoggingRoundTripper(next http.RoundTripper, opts ...Option) LoggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	rt := LoggingRoundTripper{
		next:                next,
		sensitiveDataMasker: NewSensitiveDataMasker(),
		logFieldMaxLen:      0,
	}

	for _, opt := range opts {
		opt(&rt)
	}

	return rt
}

func (rt LoggingRoundTripper) log() *slog.Logger {
	if rt.logger != nil {
		return rt.logger
	}
	return slog.Default()
}

// RoundTrip implements http.RoundTripper interface.
func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := rt.log()

	if !log.Enabled(ctx, slog.LevelDebug) {
		return rt.next.RoundTrip(req) //nolint:wrapcheck
	}

	requestID := xid.New().String()

	reqBytes, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		log.ErrorContext(ctx, "httputil.DumpRequestOut",
			slog.String(logging.FieldRequestID, requestID),
			logging.Error(err),
		)
	}

	log.DebugContext(ctx, logging.FieldHTTPRequest,
		slog.String(logging.FieldRequestID, requestID),
		slog.String(logging.FieldRequestBody, rt.prepare(reqBytes)),
	)

	start := time.Now()

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		log.DebugContext(ctx, logging.FieldHTTPResponse,
			slog.String(logging.FieldRequestID, requestID),
			logging.Error(err),
			slog.Int64(logging.FieldDurationMs, time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	respBytes, err := httputil.DumpResponse(resp, !isBinary(resp))
	if err != nil {
		log.ErrorContext(ctx, "httputil.DumpResponse",
			slog.String(logging.FieldRequestID, requestID),
			logging.Error(err),
		)
	}

	log.DebugContext(ctx, logging.FieldHTTPResponse,
		slog.String(logging.FieldRequestID, requestID),
		slog.Int(logging.FieldResponseStatus, resp.StatusCode),
		slog.String(logging.FieldResponseBody, rt.prepare(respBytes)),
		slog.Int64(logging.FieldDurationMs, time.Since(start).Milliseconds()),
	)

	return resp, nil
}

func (rt LoggingRoundTripper) prepare(b []byte) string {
	b = rt.sensitiveDataMasker.Mask(b)
	if rt.logFieldMaxLen != 0 && len(b) > rt.logFieldMaxLen {
		b = b[:rt.logFieldMaxLen]
	}
	return string(b)
}

// isBinary reports whether the response body should be left out of the dump.
func isBinary(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	return len(ct) >= 6 && ct[:6] == "image/"
}

package ntfy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/obsidianstack/ntfy-bridge/pkg/types"
	"github.com/obsidianstack/ntfy-bridge/server/internal/config"
)

const (
	// maxResponseText caps how much of an ntfy response body is read for logging.
	maxResponseText = 64 << 10

	headerTitle    = "X-Title"
	headerTags     = "X-Tags"
	headerPriority = "X-Priority"

	contentType = "text/plain; charset=utf-8"
)

// Caller-facing bodies of the aggregated result.
const (
	BodyOK     = "ok"
	BodyFailed = "Failed"
)

// Recorder receives delivery statistics. The metrics package implements it.
type Recorder interface {
	AlertsReceived(n int)
	Delivery(ok bool, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) AlertsReceived(int)           {}
func (nopRecorder) Delivery(bool, time.Duration) {}

// Outcome is the result of delivering one notification.
// StatusCode is 0 when the request never produced an HTTP response.
type Outcome struct {
	StatusCode int
	Err        error
}

// Result is the aggregated outcome of one webhook event.
type Result struct {
	Code     int
	Body     string
	Outcomes []Outcome
}

// OK reports whether every delivery in the event succeeded.
func (r Result) OK() bool { return r.Code == http.StatusOK }

// Options tunes a Dispatcher. Zero values select defaults.
type Options struct {
	// Client is used for outbound requests. Defaults to a client with the
	// configured ntfy timeout.
	Client *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Recorder defaults to a no-op.
	Recorder Recorder
}

// Dispatcher delivers alert events to a single ntfy topic.
//
// Dispatcher holds only immutable configuration and is safe for concurrent
// use; each Dispatch call processes its alerts sequentially.
type Dispatcher struct {
	endpoint string
	username string
	password string

	client   *http.Client
	logger   *slog.Logger
	recorder Recorder
}

// NewDispatcher creates a Dispatcher posting to cfg.Endpoint().
func NewDispatcher(cfg config.NtfyConfig, opts Options) *Dispatcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Dispatcher{
		endpoint: cfg.Endpoint(),
		username: cfg.Username,
		password: cfg.Password,
		client:   client,
		logger:   logger.With("component", "ntfy_dispatcher"),
		recorder: rec,
	}
}

// Dispatch sends one notification per alert in ev, in input order. A failed
// delivery is recorded and the loop moves on to the next alert.
//
// The result is 200 "ok" only if every delivery answered 200; any other
// outcome, including a transport error, makes the whole event 500 "Failed".
// Partial delivery is reported as failure.
//
// Deliveries are detached from ctx cancellation so a caller that goes away
// mid-batch does not abort the remaining alerts; each request is bounded by
// the client timeout instead. Values such as the request ID are kept.
func (d *Dispatcher) Dispatch(ctx context.Context, ev types.AlertEvent) Result {
	ctx = context.WithoutCancel(ctx)
	logger := d.loggerFor(ctx)
	logger.Info("alerts received", "count", len(ev.Alerts), "status", ev.Status, "receiver", ev.Receiver)
	d.recorder.AlertsReceived(len(ev.Alerts))

	res := Result{Code: http.StatusOK, Body: BodyOK}
	for _, sub := range ev.Split() {
		n := TranslateEvent(sub)

		start := time.Now()
		out := d.send(ctx, n)
		ok := out.Err == nil && out.StatusCode == http.StatusOK
		d.recorder.Delivery(ok, time.Since(start))

		res.Outcomes = append(res.Outcomes, out)
		if !ok {
			res.Code = http.StatusInternalServerError
			res.Body = BodyFailed
		}
	}
	return res
}

// send performs one POST to the ntfy topic and logs its outcome.
func (d *Dispatcher) send(ctx context.Context, n types.Notification) Outcome {
	logger := d.loggerFor(ctx).With("title", n.Title, "priority", n.Priority)

	req, err := d.newRequest(ctx, n)
	if err != nil {
		logger.Error("ntfy: build request failed", "err", err)
		return Outcome{Err: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		err = fmt.Errorf("http post: %w", err)
		logger.Error("ntfy: delivery failed", "err", err)
		return Outcome{Err: err}
	}
	defer resp.Body.Close()

	text, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseText))
	if readErr != nil {
		logger.Warn("ntfy: read response failed", "status", resp.StatusCode, "err", readErr)
	}
	logger.Info("ntfy: delivery", "status", resp.StatusCode, "response", strings.TrimSpace(string(text)))

	out := Outcome{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		out.Err = fmt.Errorf("ntfy returned HTTP %d", resp.StatusCode)
	}
	return out
}

// newRequest builds the outbound POST for n.
func (d *Dispatcher) newRequest(ctx context.Context, n types.Notification) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(n.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(headerTitle, n.Title)
	req.Header.Set(headerTags, n.Tags)
	req.Header.Set(headerPriority, n.Priority)
	if d.username != "" && d.password != "" {
		req.SetBasicAuth(d.username, d.password)
	}
	return req, nil
}

type requestIDKey struct{}

// WithRequestID tags ctx with the ID of the inbound webhook request so every
// delivery log line of that request can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func (d *Dispatcher) loggerFor(ctx context.Context) *slog.Logger {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return d.logger.With("request_id", id)
	}
	return d.logger
}

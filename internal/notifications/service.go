package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsreel/internal/config"
)

const userAgent = "newsreel/0.1"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, runID string, sourceCount int) error
	NotifyRunAccepted(ctx context.Context, runID string, wordCount, attempts int) error
	NotifyEscalation(ctx context.Context, runID, reviewPath string, attempts int) error
	NotifyRunFailed(ctx context.Context, runID string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured, otherwise a noop implementation.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	cfg      config.Notifications
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, runID string, sourceCount int) error {
	if !n.cfg.RunComplete {
		return nil
	}
	data := payload{
		title:   "Newsreel - Run Started",
		message: fmt.Sprintf("Run %s started: fetching %d sources", runID, sourceCount),
		tags:    []string{"newsreel", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunAccepted(ctx context.Context, runID string, wordCount, attempts int) error {
	if !n.cfg.RunComplete {
		return nil
	}
	data := payload{
		title:   "Newsreel - Script Accepted",
		message: fmt.Sprintf("Run %s accepted a %d-word script on attempt %d", runID, wordCount, attempts),
		tags:    []string{"newsreel", "run", "accepted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEscalation(ctx context.Context, runID, reviewPath string, attempts int) error {
	if !n.cfg.Escalation {
		return nil
	}
	data := payload{
		title:    "Newsreel - Review Needed",
		message:  fmt.Sprintf("Run %s escalated after %d attempts.\nReview package: %s", runID, attempts, reviewPath),
		tags:     []string{"newsreel", "escalation", "review"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runID string, err error) error {
	if !n.cfg.Errors {
		return nil
	}
	message := "unknown"
	if err != nil {
		message = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Newsreel - Run Failed",
		message:  fmt.Sprintf("Run %s failed: %s", runID, message),
		tags:     []string{"newsreel", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Newsreel - Test",
		message:  "Notification system test",
		tags:     []string{"newsreel", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error         { return nil }
func (noopService) NotifyRunAccepted(context.Context, string, int, int) error   { return nil }
func (noopService) NotifyEscalation(context.Context, string, string, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error        { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }

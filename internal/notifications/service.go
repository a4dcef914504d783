package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bracket/internal/config"
)

const userAgent = "Bracket-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyJobSubmitted(ctx context.Context, listingID int64, externalJobID string) error
	NotifyJobCompleted(ctx context.Context, listingID int64, outputRef string) error
	NotifyJobFailed(ctx context.Context, listingID int64, reason string) error
	NotifyJobsRetried(ctx context.Context, retried, failed int) error
	NotifyListingDelivered(ctx context.Context, listingID int64, address string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error

	// Enabled reports whether notifications are actually delivered.
	Enabled() bool
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		jobs:     cfg.Notifications.Jobs,
		delivery: cfg.Notifications.Delivery,
		errors:   cfg.Notifications.Errors,
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
	client   *http.Client
	jobs     bool
	delivery bool
	errors   bool
}

func (n *ntfyService) NotifyJobSubmitted(ctx context.Context, listingID int64, externalJobID string) error {
	if !n.jobs {
		return nil
	}
	data := payload{
		title:   "Bracket - Job Submitted",
		message: fmt.Sprintf("Listing %d submitted for fusion (remote job %s)", listingID, strings.TrimSpace(externalJobID)),
		tags:    []string{"bracket", "job", "submitted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, listingID int64, outputRef string) error {
	if !n.jobs {
		return nil
	}
	message := fmt.Sprintf("Fusion complete for listing %d", listingID)
	if outputRef = strings.TrimSpace(outputRef); outputRef != "" {
		message = fmt.Sprintf("%s\nOutput: %s", message, outputRef)
	}
	data := payload{
		title:   "Bracket - Job Complete",
		message: message,
		tags:    []string{"bracket", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, listingID int64, reason string) error {
	if !n.jobs {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Bracket - Job Failed",
		message:  fmt.Sprintf("Fusion failed for listing %d: %s", listingID, reason),
		tags:     []string{"bracket", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobsRetried(ctx context.Context, retried, failed int) error {
	if !n.jobs {
		return nil
	}
	var title, message string
	if failed == 0 {
		title = "Bracket - Jobs Retried"
		message = fmt.Sprintf("Resubmitted %d failed jobs", retried)
	} else {
		title = "Bracket - Jobs Retried (with errors)"
		message = fmt.Sprintf("Resubmitted %d jobs, %d could not be resubmitted", retried, failed)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"bracket", "job", "retried"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyListingDelivered(ctx context.Context, listingID int64, address string) error {
	if !n.delivery {
		return nil
	}
	message := fmt.Sprintf("Listing %d delivered", listingID)
	if address = strings.TrimSpace(address); address != "" {
		message = fmt.Sprintf("Delivered: %s (listing %d)", address, listingID)
	}
	data := payload{
		title:    "Bracket - Delivered",
		message:  message,
		tags:     []string{"bracket", "listing", "delivered"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Bracket - Error",
		message:  builder.String(),
		tags:     []string{"bracket", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) Enabled() bool { return true }

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Bracket - Test",
		message:  "Notification system test",
		tags:     []string{"bracket", "test"},
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

func (noopService) NotifyJobSubmitted(context.Context, int64, string) error { return nil }
func (noopService) NotifyJobCompleted(context.Context, int64, string) error { return nil }
func (noopService) NotifyJobFailed(context.Context, int64, string) error    { return nil }
func (noopService) NotifyJobsRetried(context.Context, int, int) error       { return nil }
func (noopService) NotifyListingDelivered(context.Context, int64, string) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
func (noopService) Enabled() bool                                    { return false }

// Nop returns a Service that drops every notification. It is intended for
// tests and for components constructed without configuration.
func Nop() Service { return noopService{} }

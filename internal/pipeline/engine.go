package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bracket/internal/logging"
	"bracket/internal/notifications"
	"bracket/internal/orders"
	"bracket/internal/services"
)

// InvalidTransitionError reports a request rejected by the adjacency table.
type InvalidTransitionError struct {
	From orders.OpsStatus
	To   orders.OpsStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return services.ErrValidation }

// Request describes one attempted status change.
type Request struct {
	ListingID  int64
	Target     orders.OpsStatus
	Actor      string
	Privileged bool
	Notes      string
}

// Engine applies status transitions to listings.
type Engine struct {
	store    *orders.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// New creates a transition engine. A nil notifier disables notifications and
// a nil logger disables logging.
func New(store *orders.Store, notifier notifications.Service, logger *slog.Logger) *Engine {
	if notifier == nil {
		notifier = notifications.Nop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Transition moves one listing to the requested status. Non-privileged
// requests must follow the adjacency table; privileged requests may set any
// target. Exactly one audit event is recorded per accepted transition and
// none on rejection. The updated listing is returned on success.
func (e *Engine) Transition(ctx context.Context, req Request) (*orders.Listing, error) {
	target, ok := orders.ParseOpsStatus(string(req.Target))
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "transition",
			fmt.Sprintf("unknown status %q", req.Target), nil)
	}

	listing, err := e.store.GetListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, services.Wrap(services.ErrNotFound, "pipeline", "transition", fmt.Sprintf("listing %d", req.ListingID), nil)
	}

	from := listing.OpsStatus
	if !req.Privileged && !orders.CanTransition(from, target) {
		return nil, &InvalidTransitionError{From: from, To: target}
	}

	now := time.Now().UTC()
	stampMilestones(listing, from, target, now)
	listing.OpsStatus = target

	notes := req.Notes
	if req.Privileged && !orders.CanTransition(from, target) {
		notes = appendNote(notes, "privileged override")
	}
	event := orders.NewEvent(listing.ID, orders.EventStatusChanged, string(from), string(target), req.Actor, notes)

	if err := e.store.TransitionListing(ctx, listing, from, event); err != nil {
		return nil, err
	}

	e.logger.Info("listing status changed",
		logging.Int64(logging.FieldListingID, listing.ID),
		logging.String("from", string(from)),
		logging.String("to", string(target)),
		logging.String(logging.FieldActor, event.Actor),
	)

	if target == orders.OpsDelivered {
		if err := e.notifier.NotifyListingDelivered(ctx, listing.ID, listing.Address); err != nil {
			e.logger.Warn("delivery notification failed",
				logging.Int64(logging.FieldListingID, listing.ID),
				logging.Error(err),
			)
		}
	}
	return listing, nil
}

// AllowedNext exposes the adjacency table for one listing's current status so
// callers can present valid choices without attempting a transition.
func (e *Engine) AllowedNext(ctx context.Context, listingID int64) (orders.OpsStatus, []orders.OpsStatus, error) {
	listing, err := e.store.GetListing(ctx, listingID)
	if err != nil {
		return "", nil, err
	}
	if listing == nil {
		return "", nil, services.Wrap(services.ErrNotFound, "pipeline", "allowedNext", fmt.Sprintf("listing %d", listingID), nil)
	}
	return listing.OpsStatus, orders.AllowedNext(listing.OpsStatus), nil
}

// IsInvalidTransition reports whether err is a transition rejected by the
// adjacency table, as opposed to a missing listing or a storage failure.
func IsInvalidTransition(err error) bool {
	var invalid *InvalidTransitionError
	return errors.As(err, &invalid)
}

func stampMilestones(listing *orders.Listing, from, target orders.OpsStatus, now time.Time) {
	switch {
	case target == orders.OpsInEditing && from != orders.OpsInEditing:
		listing.EditingStartedAt = &now
	case from == orders.OpsInEditing && target == orders.OpsReadyForQC:
		listing.EditingCompletedAt = &now
	}
	if target == orders.OpsDelivered {
		listing.DeliveredAt = &now
	}
}

func appendNote(notes, extra string) string {
	if notes == "" {
		return extra
	}
	return notes + "; " + extra
}

// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/validate"
)

// Service implements the subscription use cases.
type Service struct {
	subscribers Repository
	now         func() time.Time
}

// NewService constructs a newsletter [Service]. A nil clock means time.Now.
func NewService(subscribers Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{subscribers: subscribers, now: now}
}

// Subscribe adds email to the list or reactivates it.
func (service *Service) Subscribe(context context.Context, email string) (Outcome, error) {
	normalized, err := normalize(email)
	if err != nil {
		return 0, err
	}

	outcome, err := service.subscribers.Subscribe(context, normalized, service.now())
	if err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			return 0, ErrAlreadySubscribed
		}
		return 0, fmt.Errorf("newsletter_service_subscribe_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "newsletter_subscribed",
		slog.Bool("reactivated", outcome == OutcomeReactivated),
	)
	return outcome, nil
}

// Unsubscribe deactivates email. Already inactive addresses succeed again.
func (service *Service) Unsubscribe(context context.Context, email string) error {
	normalized, err := normalize(email)
	if err != nil {
		return err
	}

	if err := service.subscribers.Unsubscribe(context, normalized, service.now()); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return ErrNotSubscribed
		}
		return fmt.Errorf("newsletter_service_unsubscribe_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "newsletter_unsubscribed")
	return nil
}

// ActiveSubscribers lists the current audience, most recent first.
func (service *Service) ActiveSubscribers(context context.Context) ([]Subscriber, error) {
	subscribers, err := service.subscribers.ListActive(context)
	if err != nil {
		return nil, fmt.Errorf("newsletter_service_list_failed: %w", err)
	}
	return subscribers, nil
}

// CountSubscribers returns the number of active subscribers. It feeds the
// admin dashboard.
func (service *Service) CountSubscribers(context context.Context) (int, error) {
	count, err := service.subscribers.CountActive(context)
	if err != nil {
		return 0, fmt.Errorf("newsletter_service_count_failed: %w", err)
	}
	return count, nil
}

func normalize(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if validator.HasErrors() {
		return "", apperr.ValidationError(MessageInvalidEmail, apperr.FieldError{Field: FieldEmail, Message: MessageInvalidEmail})
	}
	return email, nil
}

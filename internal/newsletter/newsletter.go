// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package newsletter manages the mailing-list subscriptions of the club site.

Addresses are stored lowercased. Unsubscribing keeps the row so a later
subscribe reactivates it instead of creating a duplicate.
*/
package newsletter

import (
	"context"
	"net/http"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
)

// Subscriber is one mailing-list entry.
type Subscriber struct {
	Email          string     `json:"email"`
	IsActive       bool       `json:"isActive"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
}

// Outcome tells a new subscription apart from a reactivated one.
type Outcome int

const (
	OutcomeSubscribed Outcome = iota + 1
	OutcomeReactivated
)

// FieldEmail is the only input field of the newsletter endpoints.
const FieldEmail = "email"

// Client-facing messages.
const (
	MessageSubscribed   = "Successfully subscribed to newsletter! Thank you for joining us."
	MessageReactivated  = "Welcome back! Your newsletter subscription has been reactivated."
	MessageUnsubscribed = "Successfully unsubscribed from newsletter"
	MessageInvalidEmail = "Please provide a valid email address"
)

const CodeAlreadySubscribed = "ALREADY_SUBSCRIBED"

var (
	ErrAlreadySubscribed = apperr.New(CodeAlreadySubscribed, "This email is already subscribed to our newsletter", http.StatusConflict)
	ErrNotSubscribed     = apperr.New(apperr.CodeNotFound, "Email not found in our newsletter list", http.StatusNotFound)
	ErrAdminToken        = apperr.Unauthorized("Unauthorized: Admin access required.")
)

// Repository persists subscriptions. Emails are passed already normalized.
type Repository interface {

	/*
		Subscribe inserts email or reactivates an inactive row, atomically.

		Parameters:
		  - context: context.Context
		  - email: string
		  - at: time.Time

		Returns:
		  - Outcome: Which of the two happened
		  - error: ErrAlreadySubscribed when the row is active, or persistence failures
	*/
	Subscribe(context context.Context, email string, at time.Time) (Outcome, error)

	// Unsubscribe marks the row inactive. Unknown emails return dberr.ErrNotFound.
	Unsubscribe(context context.Context, email string, at time.Time) error

	// ListActive returns active subscribers, most recent first.
	ListActive(context context.Context) ([]Subscriber, error)

	CountActive(context context.Context) (int, error)
}

// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package schema

// NewsletterSubscriberTable represents the 'newsletter.subscriber' table
type NewsletterSubscriberTable struct {
	Table          string
	Email          string
	IsActive       string
	SubscribedAt   string
	UnsubscribedAt string
}

// NewsletterSubscriber is the schema definition for newsletter.subscriber
var NewsletterSubscriber = NewsletterSubscriberTable{
	Table:          "newsletter.subscriber",
	Email:          "email",
	IsActive:       "isactive",
	SubscribedAt:   "subscribedat",
	UnsubscribedAt: "unsubscribedat",
}

// Columns returns all standard column names
func (t NewsletterSubscriberTable) Columns() []string {
	return []string{t.Email, t.IsActive, t.SubscribedAt, t.UnsubscribedAt}
}

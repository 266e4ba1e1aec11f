// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResetCode(t *testing.T) {
	body, err := RenderResetCode(ResetCodeMessage{
		To:        "jane@x.edu",
		FullName:  "Jane <Doe>",
		Code:      "482913",
		ExpiresIn: 10 * time.Minute,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "expire in 10 minutes")
	// Names are escaped.
	assert.Contains(t, body, "Jane &lt;Doe&gt;")
}

func TestNewSMTPMailer_InvalidSender(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: 587, From: "not an address"})
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	payload := string(buildMessage("Hub <no-reply@hub.edu>", "jane@x.edu", "Subject", "<p>hi</p>"))

	assert.Contains(t, payload, "To: jane@x.edu\r\n")
	assert.Contains(t, payload, "Content-Type: text/html")
	assert.Contains(t, payload, "\r\n\r\n<p>hi</p>")
}

// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package discord creates invite links to the club's Discord server.

The bot token never leaves the server: clients ask this package for an
invite and receive only the public https://discord.gg URL.

Outbound calls are paced with a token bucket, and concurrent callers share
one in-flight request.
*/
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
)

const (
	// InviteBaseURL prefixes every invite code.
	InviteBaseURL = "https://discord.gg/"

	DefaultAPIBaseURL = "https://discord.com/api/v10"
	DefaultTimeout    = 10 * time.Second

	// Discord allows bursts on channel routes but throttles sustained traffic.
	defaultRate  = rate.Limit(1)
	defaultBurst = 5

	// maxErrorBody bounds how much of an upstream error is kept for logs.
	maxErrorBody = 4 << 10
)

const CodeNotConfigured = "DISCORD_NOT_CONFIGURED"

var ErrNotConfigured = apperr.New(CodeNotConfigured, "Discord integration not configured", http.StatusInternalServerError)

// Config holds the bot credentials and endpoint.
type Config struct {
	BotToken   string
	ChannelID  string
	APIBaseURL string

	// HTTPClient defaults to a client with [DefaultTimeout].
	HTTPClient *http.Client
}

// Configured reports whether both credentials are present.
func (c Config) Configured() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Invite is a generated invite link.
type Invite struct {
	Code string `json:"code"`
	URL  string `json:"inviteUrl"`
}

// Client talks to the Discord REST API.
type Client struct {
	config  Config
	http    *http.Client
	pacer   *rate.Limiter
	flights singleflight.Group
}

// NewClient builds a [Client]. An unconfigured client is valid; every call
// then fails with [ErrNotConfigured].
func NewClient(config Config) *Client {
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		config: config,
		http:   client,
		pacer:  rate.NewLimiter(defaultRate, defaultBurst),
	}
}

// createInviteRequest mirrors the Discord "Create Channel Invite" body: a
// permanent, unlimited, non-temporary, unique invite.
type createInviteRequest struct {
	MaxAge    int  `json:"max_age"`
	MaxUses   int  `json:"max_uses"`
	Temporary bool `json:"temporary"`
	Unique    bool `json:"unique"`
}

type createInviteResponse struct {
	Code string `json:"code"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

/*
CreateInvite asks Discord for a new permanent invite to the configured channel.

Parameters:
  - ctx: context.Context

Returns:
  - *Invite: The invite code and public URL
  - error: ErrNotConfigured, or a BAD_GATEWAY AppError on upstream failure
*/
func (client *Client) CreateInvite(ctx context.Context) (*Invite, error) {
	if !client.config.Configured() {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "discord_not_configured")
		return nil, ErrNotConfigured
	}

	result, err, _ := client.flights.Do(client.config.ChannelID, func() (any, error) {
		return client.createInvite(ctx)
	})
	if err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "discord_invite_failed", slog.Any("error", err))
		return nil, apperr.BadGateway("Failed to generate invite", err)
	}

	invite := result.(*Invite)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "discord_invite_created")
	return &Invite{Code: invite.Code, URL: invite.URL}, nil
}

func (client *Client) createInvite(ctx context.Context) (*Invite, error) {
	if err := client.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("discord_pacer_wait_failed: %w", err)
	}

	body, err := json.Marshal(createInviteRequest{MaxAge: 0, MaxUses: 0, Temporary: false, Unique: true})
	if err != nil {
		return nil, fmt.Errorf("discord_encode_failed: %w", err)
	}

	endpoint := fmt.Sprintf("%s/channels/%s/invites", client.config.APIBaseURL, url.PathEscape(client.config.ChannelID))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("discord_request_build_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bot "+client.config.BotToken)
	request.Header.Set("Content-Type", "application/json")

	response, err := client.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("discord_request_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var upstream apiError
		raw, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		if json.Unmarshal(raw, &upstream) != nil || upstream.Message == "" {
			upstream.Message = "Discord API error"
		}
		return nil, fmt.Errorf("discord_api_status_%d: %s", response.StatusCode, upstream.Message)
	}

	var created createInviteResponse
	if err := json.NewDecoder(response.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("discord_decode_failed: %w", err)
	}
	if created.Code == "" {
		return nil, errors.New("discord_empty_invite_code")
	}

	return &Invite{Code: created.Code, URL: InviteBaseURL + created.Code}, nil
}

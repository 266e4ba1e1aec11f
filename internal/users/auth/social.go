// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/pkg/uuid"
)

// maxUserInfoBytes caps the identity provider's userinfo response.
const maxUserInfoBytes = 64 << 10

// SocialConfig describes the delegated identity provider. Endpoints follow
// the Auth0 layout under IssuerURL.
type SocialConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// IdentityProfile is the subset of the provider's userinfo we consume.
type IdentityProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// SocialService provisions accounts from a delegated identity provider and
// logs them in. The protocol itself is handled by golang.org/x/oauth2.
type SocialService struct {
	service     *Service
	states      StateStore
	oauth       *oauth2.Config
	userInfoURL string
}

// NewSocialService constructs a [SocialService].
func NewSocialService(service *Service, states StateStore, config SocialConfig) *SocialService {
	issuer := strings.TrimRight(config.IssuerURL, "/")
	return &SocialService{
		service: service,
		states:  states,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   issuer + "/authorize",
				TokenURL:  issuer + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: issuer + "/userinfo",
	}
}

/*
AuthorizeURL creates a single-use state and returns the provider's login URL.

Parameters:
  - ctx: context.Context

Returns:
  - string: Redirect target
  - error: State persistence failures
*/
func (social *SocialService) AuthorizeURL(ctx context.Context) (string, error) {
	state, err := sec.GenerateState()
	if err != nil {
		return "", fmt.Errorf("auth_social_state_failed: %w", err)
	}

	if err := social.states.Save(ctx, state, constants.OAuthStateTTL); err != nil {
		return "", fmt.Errorf("auth_social_state_save_failed: %w", err)
	}

	return social.oauth.AuthCodeURL(state), nil
}

/*
Callback completes the provider redirect and issues a token pair.

Description: The state is consumed before anything else. The account is
found by external ID, else linked by email, else created without a
password. Linking and creation both require the provider to report the
email as verified.

Parameters:
  - ctx: context.Context
  - code: string
  - state: string
  - deviceID: string

Returns:
  - *TokenPair: Tokens for the new session
  - error: ErrInvalidState, ErrSocialLoginFailed, ErrAccountNotActive
*/
func (social *SocialService) Callback(ctx context.Context, code, state, deviceID string) (*TokenPair, error) {
	if state == "" || code == "" {
		return nil, ErrInvalidState
	}

	valid, err := social.states.Consume(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("auth_social_state_consume_failed: %w", err)
	}
	if !valid {
		return nil, ErrInvalidState
	}

	token, err := social.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, ErrSocialLoginFailed.WithCause(err)
	}

	profile, err := social.fetchProfile(ctx, token)
	if err != nil {
		return nil, ErrSocialLoginFailed.WithCause(err)
	}

	account, err := social.provision(ctx, profile)
	if err != nil {
		return nil, err
	}

	if !account.IsActive() {
		return nil, ErrAccountNotActive
	}

	pair, err := social.service.issuer.Issue(ctx, account, deviceID)
	if err != nil {
		return nil, fmt.Errorf("auth_social_issue_failed: %w", err)
	}

	social.service.touchLastLogin(ctx, account)
	return pair, nil
}

func (social *SocialService) fetchProfile(ctx context.Context, token *oauth2.Token) (*IdentityProfile, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, social.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	response, err := social.oauth.Client(ctx, token).Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", response.StatusCode)
	}

	var profile IdentityProfile
	if err := json.NewDecoder(io.LimitReader(response.Body, maxUserInfoBytes)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("userinfo decode: %w", err)
	}

	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	if profile.Subject == "" || profile.Email == "" {
		return nil, errors.New("userinfo is missing sub or email")
	}

	return &profile, nil
}

// provision resolves the provider identity to a local account.
func (social *SocialService) provision(ctx context.Context, profile *IdentityProfile) (*Account, error) {
	users := social.service.users

	account, err := users.FindByExternalID(ctx, profile.Subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_social_lookup_failed: %w", err)
	}

	// An unverified email proves nothing about who owns the address.
	if !profile.EmailVerified {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_social_email_unverified", slog.String("subject", profile.Subject))
		return nil, ErrSocialLoginFailed
	}

	account, err = users.FindByEmail(ctx, profile.Email)
	if err == nil {
		if err := users.LinkExternalID(ctx, account.ID, profile.Subject); err != nil {
			return nil, fmt.Errorf("auth_social_link_failed: %w", err)
		}
		account.ExternalID = profile.Subject

		ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_social_account_linked", slog.String("account_id", account.ID))
		return account, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_social_lookup_failed: %w", err)
	}

	username, err := social.service.deriveUsername(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(profile.Name)
	if fullName == "" {
		fullName, _, _ = strings.Cut(profile.Email, "@")
	}

	now := social.service.now()
	account = &Account{
		ID:         uuid.New(),
		Username:   username,
		Email:      profile.Email,
		FullName:   fullName,
		Provider:   ProviderSocial,
		ExternalID: profile.Subject,
		Role:       sec.RoleMember,
		Status:     StatusActive,
		Profile: Profile{
			ProgrammingLanguages: []string{},
			ProfilePicture:       profile.Picture,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := users.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("auth_social_create_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_social_account_created", slog.String("account_id", account.ID))
	return account, nil
}

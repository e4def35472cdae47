package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/internal/domain"
	"github.com/ma-crm/crm-go/pkg/httpext"
)

// Service performs the authentication network calls. It hits the auth base
// URL, which is distinct from the resource API's, and never reads tokens from
// the store: the only bearer it ever sends is the access token passed
// explicitly to CurrentUser, which runs during login before the store is
// populated.
type Service struct {
	client  *http.Client
	authURL string
	apiURL  string
}

func NewService(authURL, apiURL string, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{}
	}
	return &Service{
		client:  client,
		authURL: strings.TrimRight(authURL, "/"),
		apiURL:  strings.TrimRight(apiURL, "/"),
	}
}

// Login exchanges credentials for a token pair. Rejected credentials surface
// as the backend's request failure (an *httpext.APIError).
func (s *Service) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	var pair TokenPair
	if err := s.post(ctx, s.authURL+"/login/", creds, &pair); err != nil {
		return TokenPair{}, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return TokenPair{}, fmt.Errorf("login response missing tokens")
	}

	log.Debug().Str("email", creds.Email).Msg("Login succeeded")
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token. The backend may
// rotate the refresh token; when it does, the rotated value is returned in
// the pair, otherwise Refresh in the result is empty.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	body := map[string]string{"refresh": refreshToken}

	var pair TokenPair
	if err := s.post(ctx, s.authURL+"/refresh/", body, &pair); err != nil {
		return TokenPair{}, err
	}
	if pair.Access == "" {
		return TokenPair{}, fmt.Errorf("refresh response missing access token")
	}
	return pair, nil
}

// CurrentUser fetches the authenticated profile using an explicit access
// token.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/users/me/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpext.ErrorFromResponse(resp)
	}

	user := new(domain.User)
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

func (s *Service) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpext.ErrorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

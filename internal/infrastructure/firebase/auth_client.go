package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

const (
	signInURL  = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	refreshURL = "https://securetoken.googleapis.com/v1/token"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenPair is what a password sign-in or a refresh returns.
type TokenPair struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	UID          string
}

type FirebaseAuthClient struct {
	client     *auth.Client
	apiKey     string
	httpClient *http.Client
	devTokens  *DevTokenIssuer
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:     client,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithDevTokens makes VerifyToken accept tokens from issuer as well.
func (f *FirebaseAuthClient) WithDevTokens(issuer *DevTokenIssuer) *FirebaseAuthClient {
	f.devTokens = issuer
	return f
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	if f.devTokens != nil && f.devTokens.Recognizes(token) {
		return f.devTokens.Verify(token)
	}

	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

// RevokeSessions invalidates every refresh token issued to uid.
func (f *FirebaseAuthClient) RevokeSessions(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

func (f *FirebaseAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (*TokenPair, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
		LocalID      string `json:"localId"`
	}
	status, err := f.post(ctx, signInURL, "application/json", bytes.NewReader(body), &payload)
	if err != nil {
		if status == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &TokenPair{
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    parseSeconds(payload.ExpiresIn),
		UID:          payload.LocalID,
	}, nil
}

func (f *FirebaseAuthClient) RefreshIDToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	var payload struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	status, err := f.post(ctx, refreshURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &payload)
	if err != nil {
		if status == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &TokenPair{
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    parseSeconds(payload.ExpiresIn),
		UID:          payload.UserID,
	}, nil
}

func (f *FirebaseAuthClient) post(ctx context.Context, endpoint, contentType string, body io.Reader, out interface{}) (int, error) {
	if f.apiKey == "" {
		return 0, fmt.Errorf("firebase api key is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(f.apiKey), body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity toolkit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, fmt.Errorf("identity toolkit returned %d: %s", resp.StatusCode, apiErr.Error.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode identity toolkit response: %w", err)
	}
	return resp.StatusCode, nil
}

func parseSeconds(value string) time.Duration {
	d, err := time.ParseDuration(value + "s")
	if err != nil {
		return 0
	}
	return d
}

// Package identity is a thin client for the Firebase Identity Toolkit REST
// API. The Admin SDK deliberately has no password sign-in, so the password
// flows (sign-in, sign-up, re-auth, out-of-band email codes, password
// update) go through the same REST endpoints the web SDK uses, authorized
// by the project's web API key.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Out-of-band code request types accepted by accounts:sendOobCode.
const (
	OobVerifyEmail          = "VERIFY_EMAIL"
	OobVerifyAndChangeEmail = "VERIFY_AND_CHANGE_EMAIL"
)

// APIError is a structured error returned by the Identity Toolkit, e.g.
// EMAIL_NOT_FOUND, INVALID_PASSWORD, EMAIL_EXISTS, WEAK_PASSWORD. The code
// string is surfaced verbatim to callers; the UI layer decides how to word
// it.
type APIError struct {
	Code       string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return e.Code
}

// AuthResult is the outcome of a successful credential operation.
type AuthResult struct {
	UID          string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// UserInfo is the provider's view of an account from accounts:lookup.
type UserInfo struct {
	UID           string `json:"localId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Disabled      bool   `json:"disabled"`
}

// Client calls the Identity Toolkit REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given web API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// post sends a JSON request to one accounts:* endpoint and decodes the
// response into out (when out is non-nil).
func (c *Client) post(ctx context.Context, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("identity: failed to encode %s request: %w", endpoint, err)
	}

	url := fmt.Sprintf("%s/accounts:%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("identity: failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("identity: failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &apiResp); err == nil && apiResp.Error.Message != "" {
			return &APIError{Code: apiResp.Error.Message, HTTPStatus: resp.StatusCode}
		}
		return fmt.Errorf("identity: %s returned HTTP %d", endpoint, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("identity: failed to decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

// SignInWithPassword authenticates an email/password pair. Also used for
// re-authentication before sensitive profile changes.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var result AuthResult
	if err := c.post(ctx, "signInWithPassword", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignUp creates a new email/password credential.
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var result AuthResult
	if err := c.post(ctx, "signUp", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendOobCode triggers an out-of-band email. newEmail is only consulted for
// VERIFY_AND_CHANGE_EMAIL requests; the provider commits the change when the
// user clicks the emailed link, outside this system's control.
func (c *Client) SendOobCode(ctx context.Context, requestType, idToken, newEmail string) error {
	payload := map[string]interface{}{
		"requestType": requestType,
		"idToken":     idToken,
	}
	if requestType == OobVerifyAndChangeEmail {
		payload["newEmail"] = newEmail
	}
	return c.post(ctx, "sendOobCode", payload, nil)
}

// UpdatePassword sets a new password for the account behind idToken.
func (c *Client) UpdatePassword(ctx context.Context, idToken, newPassword string) (*AuthResult, error) {
	payload := map[string]interface{}{
		"idToken":           idToken,
		"password":          newPassword,
		"returnSecureToken": true,
	}
	var result AuthResult
	if err := c.post(ctx, "update", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Lookup fetches the provider's account record for an ID token.
func (c *Client) Lookup(ctx context.Context, idToken string) (*UserInfo, error) {
	payload := map[string]interface{}{"idToken": idToken}
	var result struct {
		Users []UserInfo `json:"users"`
	}
	if err := c.post(ctx, "lookup", payload, &result); err != nil {
		return nil, err
	}
	if len(result.Users) == 0 {
		return nil, &APIError{Code: "USER_NOT_FOUND", HTTPStatus: http.StatusNotFound}
	}
	return &result.Users[0], nil
}

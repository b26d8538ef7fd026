package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"AslyStore/internal/auth"
)

var testSecret = strings.Repeat("t", 32)

func newAuthTS(t *testing.T, authn auth.Authenticator, loginLimit int) *httptest.Server {
	t.Helper()

	s := &auth.Server{
		Log:      zap.NewNop(),
		Sessions: auth.NewManager(auth.NewStore(), authn, auth.ManagerOpts{}),
		JWT:      auth.NewTokenMaker(testSecret),
		TokenTTL: time.Hour,
	}
	ts := httptest.NewServer(auth.NewHandler(s, auth.HTTPDeps{Log: zap.NewNop(), LoginLimit: loginLimit}))
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, method, url, token string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()

	code, raw := call(t, http.MethodPost, baseURL+"/auth/login", "", map[string]string{"email": email, "password": password})
	if code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", code, raw)
	}

	var lr struct {
		AccessToken string    `json:"access_token"`
		TokenType   string    `json:"token_type"`
		User        auth.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &lr); err != nil {
		t.Fatalf("decode login: %v body=%s", err, raw)
	}
	if lr.AccessToken == "" || lr.TokenType != "Bearer" || lr.User.Email != strings.ToLower(email) {
		t.Fatalf("unexpected login response: %s", raw)
	}
	return lr.AccessToken
}

func TestAuthHTTP_LoginWhoAmILogout(t *testing.T) {
	ts := newAuthTS(t, auth.MockAuthenticator{}, 0)

	tok := login(t, ts.URL, "jane@example.com", "pw")

	code, raw := call(t, http.MethodGet, ts.URL+"/auth/whoami", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("whoami status=%d body=%s", code, raw)
	}
	var who struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.Unmarshal(raw, &who); err != nil {
		t.Fatalf("decode whoami: %v", err)
	}
	if who.Email != "jane@example.com" || who.UserID != auth.UserID("jane@example.com") {
		t.Fatalf("unexpected whoami: %s", raw)
	}

	if code, _ := call(t, http.MethodPost, ts.URL+"/auth/logout", tok, nil); code != http.StatusNoContent {
		t.Fatalf("logout status=%d", code)
	}
	if code, _ := call(t, http.MethodPost, ts.URL+"/auth/logout", tok, nil); code != http.StatusNoContent {
		t.Fatalf("second logout status=%d", code)
	}

	// the token still verifies but its session is gone
	if code, _ := call(t, http.MethodGet, ts.URL+"/auth/whoami", tok, nil); code != http.StatusUnauthorized {
		t.Fatalf("whoami after logout status=%d", code)
	}
}

func TestAuthHTTP_LoginErrors(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("electric"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	authn, err := auth.NewAccountsAuthenticator([]string{"demo@asly.com:" + string(hash)})
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	ts := newAuthTS(t, authn, 0)

	login(t, ts.URL, "demo@asly.com", "electric")

	cases := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"email": "demo@asly.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown account", map[string]string{"email": "x@asly.com", "password": "electric"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "demo@asly.com"}, http.StatusBadRequest},
		{"unknown field", map[string]string{"email": "demo@asly.com", "password": "electric", "role": "admin"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, raw := call(t, http.MethodPost, ts.URL+"/auth/login", "", tc.body); code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, code, raw)
			}
		})
	}
}

func TestAuthHTTP_TokenRequired(t *testing.T) {
	ts := newAuthTS(t, auth.MockAuthenticator{}, 0)

	if code, _ := call(t, http.MethodGet, ts.URL+"/auth/whoami", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code, _ := call(t, http.MethodGet, ts.URL+"/auth/whoami", "not.a.jwt", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", code)
	}
	if code, _ := call(t, http.MethodPost, ts.URL+"/auth/logout", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for logout without token, got %d", code)
	}
}

func TestAuthHTTP_LoginRateLimited(t *testing.T) {
	ts := newAuthTS(t, auth.MockAuthenticator{}, 2)

	body := map[string]string{"email": "jane@example.com", "password": "pw"}
	for i := range 2 {
		if code, _ := call(t, http.MethodPost, ts.URL+"/auth/login", "", body); code != http.StatusOK {
			t.Fatalf("attempt %d: status=%d", i, code)
		}
	}
	if code, _ := call(t, http.MethodPost, ts.URL+"/auth/login", "", body); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}

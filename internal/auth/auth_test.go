package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestJWTRoundTrip(t *testing.T) {
	s := NewService("test-secret")
	tok, err := s.IssueJWT("anna")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	c, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Sub != "anna" {
		t.Errorf("sub = %q", c.Sub)
	}
	if c.Issuer != "tentagen" {
		t.Errorf("issuer = %q", c.Issuer)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	tok, err := NewService("secret-a").IssueJWT("anna")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if c, err := NewService("secret-b").Parse(tok); err == nil && c != nil {
		t.Error("token signed with another key must not verify")
	}
}

func TestJWTMiddleware(t *testing.T) {
	s := NewService("test-secret")
	var gotUser string
	h := JWTMiddleware(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
	}))

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rr.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rr.Code)
		}
	})

	t.Run("valid token attaches user id", func(t *testing.T) {
		tok, err := s.IssueJWT("anna")
		if err != nil {
			t.Fatalf("IssueJWT: %v", err)
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if gotUser != "anna" {
			t.Errorf("user id = %q", gotUser)
		}
	})
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	s := NewService("test-secret")
	h := LoginHandler(s, []Credential{{Username: "anna", PassHash: string(hash)}})

	login := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest("POST", "/auth/login", strings.NewReader(body)))
		return rr
	}

	if rr := login(`{"username":"anna","password":"wrong"}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d", rr.Code)
	}
	if rr := login(`{"username":"nobody","password":"hunter2"}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d", rr.Code)
	}
	if rr := login(`not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d", rr.Code)
	}

	rr := login(`{"username":"anna","password":"hunter2"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", rr.Code, rr.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c, err := s.Parse(resp["access_token"])
	if err != nil || c == nil || c.Sub != "anna" {
		t.Errorf("issued token does not verify: %v %+v", err, c)
	}
}

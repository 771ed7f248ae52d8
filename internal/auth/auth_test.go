package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

var secret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if err := ParseToken(secret, token); err != nil {
		t.Errorf("ParseToken() error = %v", err)
	}
	if err := ParseToken([]byte("wrong"), token); err == nil {
		t.Error("ParseToken() accepted token signed with another secret")
	}
}

func TestLoginHandler(t *testing.T) {
	h := LoginHandler("hunter2", secret)

	body, _ := json.Marshal(map[string]string{"password": "hunter2"})
	req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Errorf("no token in response: %s", rec.Body.String())
	}

	body, _ = json.Marshal(map[string]string{"password": "wrong"})
	req = httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d for bad password, want 401", rec.Code)
	}
}

func TestLoginHandler_NoPasswordConfigured(t *testing.T) {
	h := LoginHandler("", secret)

	body, _ := json.Marshal(map[string]string{"password": ""})
	req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d with admin login disabled, want 401", rec.Code)
	}
}

func TestMiddleware(t *testing.T) {
	m := New(secret)
	protected := m.Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/admin/log", nil)
	rec := httptest.NewRecorder()
	protected(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d without token, want 401", rec.Code)
	}

	token, _ := GenerateToken(secret)
	req = httptest.NewRequest("GET", "/admin/log", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d with valid token, want 204", rec.Code)
	}
}

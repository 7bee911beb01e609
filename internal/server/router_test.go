package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	chathandler "gemini-chat/backend/internal/chat/handler"
	chatservice "gemini-chat/backend/internal/chat/service"
	"gemini-chat/backend/internal/db"
	"gemini-chat/backend/internal/db/migrate"
	identityhandler "gemini-chat/backend/internal/identity/handler"
	identityservice "gemini-chat/backend/internal/identity/service"
	"gemini-chat/backend/internal/security"
	"gemini-chat/backend/internal/user/repository"
)

// newTestServer wires the full stack against a temporary sqlite store with no
// API key configured, so the relay stays offline.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	url := "sqlite://" + filepath.Join(t.TempDir(), "router_test.db")
	if err := migrate.Run(url, "up"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database, _, err := db.Open(url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	tokens := security.NewTokenProvider([]byte("test-secret"), time.Hour)
	auth := identityservice.NewAuthService(repository.NewSQLRepository(database), security.NewHasher(4), tokens)
	relay := chatservice.NewRelay(nil)

	return New(Options{
		CORSOrigin: "http://localhost:5500",
		Tokens:     tokens,
		Auth:       identityhandler.NewHandler(auth),
		Chat:       chathandler.NewHandler(relay),
	})
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_RegisterLoginChat(t *testing.T) {
	r := newTestServer(t)

	// Register.
	if w := do(r, http.MethodPost, "/api/register", `{"username":"Alice","password":"pw1"}`, ""); w.Code != http.StatusOK {
		t.Fatalf("register: status = %d; body %s", w.Code, w.Body.String())
	}
	// Duplicate register is a 400.
	if w := do(r, http.MethodPost, "/api/register", `{"username":"Alice","password":"pw1"}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status = %d, want 400", w.Code)
	}

	// Login with the lowercased name.
	w := do(r, http.MethodPost, "/api/login", `{"username":"alice","password":"pw1"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d; body %s", w.Code, w.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.AccessToken == "" {
		t.Fatalf("login body %s: %v", w.Body.String(), err)
	}

	// Chat with the token; no API key configured means the offline mock.
	w = do(r, http.MethodPost, "/api/chat", `{"message":"hi"}`, login.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("chat: status = %d; body %s", w.Code, w.Body.String())
	}
	var chat struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &chat); err != nil {
		t.Fatalf("unmarshal chat: %v", err)
	}
	if !strings.HasPrefix(chat.Answer, "[Mock]") || !strings.Contains(chat.Answer, "hi") {
		t.Errorf("answer = %q, want mock echoing the message", chat.Answer)
	}
}

func TestChatRequiresAuth(t *testing.T) {
	r := newTestServer(t)

	if w := do(r, http.MethodPost, "/api/chat", `{"message":"hi"}`, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	wrong, _, _ := security.NewTokenProvider([]byte("other-secret"), time.Hour).Issue("alice")
	if w := do(r, http.MethodPost, "/api/chat", `{"message":"hi"}`, wrong); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong signature: status = %d, want 401", w.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestServer(t)

	w := do(r, http.MethodGet, "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	r := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5500" {
		t.Errorf("Allow-Origin = %q, want the configured origin", got)
	}
}

func TestCORS_RejectsOtherOrigin(t *testing.T) {
	r := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for a foreign origin", got)
	}
}

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"readinghub/pkg/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testTokens = TokenService{
	Secret:   []byte("test-secret"),
	Issuer:   "readinghub-test",
	Duration: time.Hour,
}

func newAuthRouter(t *testing.T) (*gin.Engine, *Repo) {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "auth.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewRepo(db)
	router := gin.New()
	NewHandler(repo, testTokens).RegisterRoutes(router.Group("/auth"))
	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return m
}

const registerBody = `{"username":"drake","email":"drake@example.com","password":"dragonstone"}`

func TestSignParseRoundTrip(t *testing.T) {
	u := &User{ID: "u1", Username: "drake", Email: "drake@example.com", TokenVersion: 3}

	token, exp, err := testTokens.Sign(u)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", exp)
	}

	claims, err := testTokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "drake" || claims.TokenVersion != 3 {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := testTokens.Parse(token + "x"); err == nil {
		t.Error("tampered token parsed")
	}
	other := TokenService{Secret: []byte("other"), Issuer: "x", Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Error("token parsed with the wrong secret")
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Errorf("bearerToken(%q) = %q, %v, want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["token"] == "" || body["token"] == nil {
		t.Error("register response has no token")
	}
	user, _ := body["user"].(map[string]any)
	if user["username"] != "drake" {
		t.Errorf("user = %v", body["user"])
	}

	// Duplicate username or email conflicts.
	w = doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"Drake@Example.com","password":"dragonstone"}`, "")
	if w.Code != http.StatusOK {
		t.Errorf("login = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"drake@example.com","password":"wrongpass"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password login = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"dragonstone"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email login = %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newAuthRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"short username", `{"username":"ab","email":"a@b.com","password":"longenough"}`},
		{"bad email", `{"username":"drake","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"username":"drake","email":"a@b.com","password":"short"}`},
	}
	for _, tc := range cases {
		w := doJSON(t, router, http.MethodPost, "/auth/register", tc.body, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/whoami", AuthMiddleware(testTokens, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": MustGetClaims(c).UserID})
	})

	w := doJSON(t, router, http.MethodGet, "/whoami", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no header = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/whoami", "", "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token = %d, want 401", w.Code)
	}

	token, _, err := testTokens.Sign(&User{ID: "u1", Username: "drake"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	w = doJSON(t, router, http.MethodGet, "/whoami", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token = %d, body %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["id"] != "u1" {
		t.Errorf("claims id = %v", body["id"])
	}
}

func TestLogoutRevokesOutstandingTokens(t *testing.T) {
	router, repo := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d", w.Code)
	}
	token, _ := decodeBody(t, w)["token"].(string)

	// A protected route behind the same middleware and repo.
	router.GET("/whoami", AuthMiddleware(testTokens, repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": MustGetClaims(c).UserID})
	})

	if w := doJSON(t, router, http.MethodGet, "/whoami", "", token); w.Code != http.StatusOK {
		t.Fatalf("fresh token rejected: %d", w.Code)
	}

	if w := doJSON(t, router, http.MethodPost, "/auth/logout", "", token); w.Code != http.StatusOK {
		t.Fatalf("logout = %d, body %s", w.Code, w.Body.String())
	}

	// The version bump outlives the token's expiry window.
	if w := doJSON(t, router, http.MethodGet, "/whoami", "", token); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token still accepted: %d", w.Code)
	}
}

func TestChangePasswordRevokesAndRekeys(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d", w.Code)
	}
	token, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, router, http.MethodPost, "/auth/change-password",
		`{"current_password":"wrongpass","new_password":"newdragonstone"}`, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/auth/change-password",
		`{"current_password":"dragonstone","new_password":"newdragonstone"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("change password = %d, body %s", w.Code, w.Body.String())
	}

	// Old token and old password are both dead; the new password works.
	w = doJSON(t, router, http.MethodPost, "/auth/change-password",
		`{"current_password":"newdragonstone","new_password":"anotherpass1"}`, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token still accepted: %d", w.Code)
	}

	if w := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"drake@example.com","password":"dragonstone"}`, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("old password login = %d, want 401", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"drake@example.com","password":"newdragonstone"}`, ""); w.Code != http.StatusOK {
		t.Errorf("new password login = %d, want 200", w.Code)
	}
}

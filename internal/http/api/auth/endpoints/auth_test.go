package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrota/shiftswap/internal/db"
	"github.com/medrota/shiftswap/internal/http/api"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newAuthServer(t *testing.T) (*gin.Engine, *db.MemStore) {
	t.Helper()
	store := db.NewMemStore()
	router := gin.New()
	api.MountGroup(router, api.GroupConfig{Prefix: "/api"},
		AuthPublicModule(testSecret, store))
	api.MountGroup(router, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: testSecret,
		Store:     store,
	}, AuthSessionModule(testSecret, store))
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, router *gin.Engine, email string, roles ...string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"password": "hunter2hunter2",
		"roles":    roles,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestSignupAndLogin(t *testing.T) {
	router, _ := newAuthServer(t)
	signup(t, router, "nurse@example.com", "nurse")

	t.Run("duplicate email", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
			"email":    "nurse@example.com",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
			"email":    "other@example.com",
			"password": "hunter2hunter2",
			"roles":    []string{"janitor"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
			"email":    "other@example.com",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login with right password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "nurse@example.com",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "nurse@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login for unknown account", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "ghost@example.com",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCurrentProfile(t *testing.T) {
	router, _ := newAuthServer(t)
	token := signup(t, router, "doctor@example.com", "ROLE_DOCTOR", "user")

	var profile struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
		Role  string   `json:"role"`
	}

	w := doJSON(t, router, http.MethodGet, "/api/auth/current_profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "doctor@example.com", profile.Email)
	assert.Equal(t, []string{"doctor", "user"}, profile.Roles)
	assert.Equal(t, "doctor", profile.Role)

	w = doJSON(t, router, http.MethodPut, "/api/auth/current_profile", token, gin.H{
		"email": "renamed@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "renamed@example.com", profile.Email)

	t.Run("email taken by someone else", func(t *testing.T) {
		signup(t, router, "taken@example.com")
		w := doJSON(t, router, http.MethodPut, "/api/auth/current_profile", token, gin.H{
			"email": "taken@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("profile requires a token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/auth/current_profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

package shipmentserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	server := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+server.token(t, "u-manager", "MANAGER"))
	rec := server.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "manager@example.com", decode[User](t, rec).Email)

	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+server.token(t, "u-ghost", "VIEWER"))
	rec = server.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterUser(t *testing.T) {
	server := newTestServer(t, 0)

	rec := server.do(jsonRequest(t, http.MethodPost, "/api/users", map[string]any{
		"email":         " Vera@Example.com ",
		"name":          "Vera Viewer",
		"walletAddress": "0xFEED",
	}, ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[User](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "vera@example.com", created.Email)
	assert.Equal(t, "VIEWER", created.Role)
	assert.Equal(t, "0xFEED", created.WalletAddress)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+server.token(t, created.ID, "VIEWER"))
	rec = server.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Vera Viewer", decode[User](t, rec).Name)
}

func TestRegisterUser_RoleCannotBeChosen(t *testing.T) {
	server := newTestServer(t, 0)

	rec := server.do(jsonRequest(t, http.MethodPost, "/api/users", map[string]any{
		"email": "eve@example.com",
		"name":  "Eve",
		"role":  "ADMIN",
	}, ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "VIEWER", decode[User](t, rec).Role)
}

func TestRegisterUser_DuplicateEmailIsConflict(t *testing.T) {
	server := newTestServer(t, 0)

	rec := server.do(jsonRequest(t, http.MethodPost, "/api/users", map[string]any{
		"email": "MANAGER@example.com",
		"name":  "Impostor",
	}, ""))
	require.Equal(t, http.StatusConflict, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "CONFLICT", doc["code"])
	assert.Equal(t, "/api/users", doc["instance"])
}

func TestRegisterUser_InvalidBody(t *testing.T) {
	server := newTestServer(t, 0)

	rec := server.do(jsonRequest(t, http.MethodPost, "/api/users", map[string]any{"name": "No Email"}, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = server.do(jsonRequest(t, http.MethodPost, "/api/users", map[string]any{
		"email": "not-an-address",
		"name":  "Bad Email",
	}, ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decode[map[string]any](t, rec)["code"])
}

func TestUpdateWallet(t *testing.T) {
	server := newTestServer(t, 0)
	token := server.token(t, "u-manager", "MANAGER")

	rec := server.do(jsonRequest(t, http.MethodPatch, "/api/users/me/wallet", map[string]any{"walletAddress": " 0xNEW "}, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "0xNEW", decode[User](t, rec).WalletAddress)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = server.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0xNEW", decode[User](t, rec).WalletAddress)

	rec = server.do(jsonRequest(t, http.MethodPatch, "/api/users/me/wallet", map[string]any{"walletAddress": ""}, token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[User](t, rec).WalletAddress)
}

func TestUpdateWallet_RequiresAuthAndBody(t *testing.T) {
	server := newTestServer(t, 0)

	rec := server.do(jsonRequest(t, http.MethodPatch, "/api/users/me/wallet", map[string]any{"walletAddress": "0x1"}, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = server.do(jsonRequest(t, http.MethodPatch, "/api/users/me/wallet", map[string]any{}, server.token(t, "u-manager", "MANAGER")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = server.do(jsonRequest(t, http.MethodPatch, "/api/users/me/wallet", map[string]any{"walletAddress": "0x1"}, server.token(t, "u-ghost", "VIEWER")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

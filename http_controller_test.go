package userauth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userauth "github.com/auric-labs/go-userauth"
)

func newTestApp(t *testing.T) (*fiber.App, userauth.RepositoryManager) {
	t.Helper()

	repo := newTestRepo(t)
	cfg := newTestConfig()

	auther := userauth.NewAuthenticator(repo.Users(), cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: userauth.ErrorHandler(nil),
	})

	controller := userauth.NewHTTPController(repo, auther, cfg)
	controller.RegisterRoutes(app)

	return app, repo
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
}

func registerTestUser(t *testing.T, app *fiber.App, username, password string) {
	t.Helper()

	req := jsonRequest(t, http.MethodPost, "/api/user/register", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func loginTestUser(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()

	req := jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"username": username,
		"password": password,
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token userauth.IssuedToken
	decodeBody(t, resp, &token)
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "Bearer", token.TokenType)

	return token.AccessToken
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	registerTestUser(t, app, "alice", "pw12345678")

	t.Run("registered user can log in", func(t *testing.T) {
		token := loginTestUser(t, app, "alice", "pw12345678")
		assert.NotEmpty(t, token)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/user/register", fiber.Map{
			"username": "alice",
			"email":    "alice2@example.com",
			"password": "pw12345678",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid payload is a bad request", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/user/register", fiber.Map{
			"username": "bob",
			"email":    "not-an-email",
			"password": "pw12345678",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
			"username": "alice",
			"password": "wrong",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown username is unauthorized, not not-found", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
			"username": "nobody",
			"password": "pw12345678",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPI_LegacyToken(t *testing.T) {
	app, _ := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")

	req := jsonRequest(t, http.MethodPost, "/api/auth/token", fiber.Map{
		"username": "alice",
		"password": "pw12345678",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token userauth.IssuedToken
	decodeBody(t, resp, &token)
	assert.NotEmpty(t, token.AccessToken)
}

func TestAPI_Me(t *testing.T) {
	app, _ := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")
	token := loginTestUser(t, app, "alice", "pw12345678")

	t.Run("without a token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("with a valid token", func(t *testing.T) {
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me userauth.UserResponse
		decodeBody(t, resp, &me)
		assert.Equal(t, "alice", me.Username)
		assert.Equal(t, "alice@example.com", me.Email)
		assert.True(t, me.IsActive)
	})

	t.Run("with a garbage token", func(t *testing.T) {
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "garbage"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPI_ChangePassword(t *testing.T) {
	app, _ := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")
	token := loginTestUser(t, app, "alice", "pw12345678")

	t.Run("confirmation mismatch", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPut, "/api/auth/role/change_password", fiber.Map{
			"current_password": "pw12345678",
			"new_password":     "fresh-password",
			"confirm_password": "different",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		// old password still works
		loginTestUser(t, app, "alice", "pw12345678")
	})

	t.Run("wrong current password", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPut, "/api/auth/role/change_password", fiber.Map{
			"current_password": "nope",
			"new_password":     "fresh-password",
			"confirm_password": "fresh-password",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("successful rotation", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPut, "/api/auth/role/change_password", fiber.Map{
			"current_password": "pw12345678",
			"new_password":     "fresh-password",
			"confirm_password": "fresh-password",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Token userauth.IssuedToken `json:"token"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token.AccessToken)

		// only the new password logs in now
		loginTestUser(t, app, "alice", "fresh-password")

		req = jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
			"username": "alice",
			"password": "pw12345678",
		})
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPI_Roles(t *testing.T) {
	app, repo := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")
	token := loginTestUser(t, app, "alice", "pw12345678")

	bob := seedUser(t, repo, "bob")
	target := fmt.Sprintf("/api/auth/role/%d/create", bob.ID)

	t.Run("assigns a role", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, target, fiber.Map{
			"name":        "admin",
			"description": "site admin",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var role userauth.UserRole
		decodeBody(t, resp, &role)
		assert.Equal(t, userauth.RoleAdmin, role.Name)
		assert.Equal(t, bob.ID, role.UserID)
	})

	t.Run("second role is a conflict", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, target, fiber.Map{
			"name": "viewer",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown role name", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, target, fiber.Map{
			"name": "owner",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown user", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/auth/role/9999/create", fiber.Map{
			"name": "viewer",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPI_UserCRUD(t *testing.T) {
	app, repo := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")
	token := loginTestUser(t, app, "alice", "pw12345678")

	bob := seedUser(t, repo, "bob")

	t.Run("list", func(t *testing.T) {
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodGet, "/api/user/list", nil), token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var users []*userauth.UserResponse
		decodeBody(t, resp, &users)
		assert.Len(t, users, 2)
	})

	t.Run("get by id", func(t *testing.T) {
		target := fmt.Sprintf("/api/user/%d", bob.ID)
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodGet, target, nil), token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user userauth.UserResponse
		decodeBody(t, resp, &user)
		assert.Equal(t, "bob", user.Username)
	})

	t.Run("get unknown id", func(t *testing.T) {
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodGet, "/api/user/9999", nil), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("update", func(t *testing.T) {
		target := fmt.Sprintf("/api/user/%d", bob.ID)
		req := jsonRequest(t, http.MethodPut, target, fiber.Map{
			"first_name": "Robert",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user userauth.UserResponse
		decodeBody(t, resp, &user)
		assert.Equal(t, "Robert", user.FirstName)
		assert.Equal(t, "bob", user.Username)
	})

	t.Run("update to a taken username", func(t *testing.T) {
		target := fmt.Sprintf("/api/user/%d", bob.ID)
		req := jsonRequest(t, http.MethodPut, target, fiber.Map{
			"username": "alice",
		})
		resp, err := app.Test(authed(req, token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("delete deactivates instead of removing", func(t *testing.T) {
		target := fmt.Sprintf("/api/user/%d", bob.ID)
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodDelete, target, nil), token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		found, err := repo.Users().FindByID(context.Background(), bob.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive)
	})
}

func TestAPI_EmailInput(t *testing.T) {
	app, _ := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")
	token := loginTestUser(t, app, "alice", "pw12345678")

	req := jsonRequest(t, http.MethodPut, "/api/email/input", fiber.Map{
		"email": "new-alice@example.com",
	})
	resp, err := app.Test(authed(req, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "new-alice@example.com", body["email"])
}

func TestAPI_DeactivatedAccountIsLockedOut(t *testing.T) {
	app, repo := newTestApp(t)
	registerTestUser(t, app, "alice", "pw12345678")
	token := loginTestUser(t, app, "alice", "pw12345678")

	ctx := context.Background()
	alice, err := repo.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)

	_, err = repo.Users().Deactivate(ctx, alice.ID)
	require.NoError(t, err)

	t.Run("existing token stops working on gated routes", func(t *testing.T) {
		resp, err := app.Test(authed(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("fresh logins are blocked", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
			"username": "alice",
			"password": "pw12345678",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/repository"
	"github.com/yukikurage/team-task-api/internal/services"
	"github.com/yukikurage/team-task-api/internal/testutil"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	deps   *Dependencies
}

func setupTestEnv(t *testing.T) testEnv {
	return setupTestEnvWithGenerator(t, nil)
}

func setupTestEnvWithGenerator(t *testing.T, generator services.TaskGenerator) testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	tokens := services.NewTokenService("test-secret", time.Hour, repository.NewMemoryTokenDenylist())
	deps := NewDependencies(db, nil, tokens, generator)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, deps)

	return testEnv{db: db, router: r, deps: deps}
}

// do sends body as JSON with the bearer token, if any.
func (e testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	return e.send(method, path, token, reader, body != nil)
}

// doChunked is do with a body of unknown length, as sent with chunked
// transfer encoding.
func (e testEnv) doChunked(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	return e.send(method, path, token, io.MultiReader(bytes.NewReader(data)), true)
}

func (e testEnv) send(method, path, token string, body io.Reader, isJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its ID and a token.
func (e testEnv) register(t *testing.T, username string) (uint64, string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username,
		"password": "supersecret",
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		User struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}
	decode(t, w, &registered)

	w = e.do(t, http.MethodPost, "/api/token", "", map[string]string{
		"username": username,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token struct {
		Access string `json:"access"`
	}
	decode(t, w, &token)
	return registered.User.ID, token.Access
}

func (e testEnv) createTeam(t *testing.T, token, name string) uint64 {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/teams", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var team struct {
		ID uint64 `json:"id"`
	}
	decode(t, w, &team)
	return team.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Code   string              `json:"code"`
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body
}

func urlFor(parts ...interface{}) string {
	out := ""
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			out += v
		case uint64:
			out += strconv.FormatUint(v, 10)
		}
	}
	return out
}

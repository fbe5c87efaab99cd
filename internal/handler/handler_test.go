package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/db"
	"blog/internal/handler"
	"blog/internal/password"
	"blog/internal/repository"
	"blog/internal/router"
	"blog/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))
	t.Cleanup(func() { _ = db.Close(gormDB) })

	hasher, err := password.NewHasher(password.AlgorithmBcrypt)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	userService := service.NewUserService(userRepo, hasher, nil)
	postService := service.NewPostService(userRepo, postRepo, nil)
	commentService := service.NewCommentService(userRepo, postRepo, commentRepo, nil)

	e := echo.New()
	router.Register(
		e,
		handler.NewUserHandler(userService),
		handler.NewAuthHandler(userService),
		handler.NewPostHandler(postService),
		handler.NewCommentHandler(commentService),
	)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func createUser(t *testing.T, e *echo.Echo, username, email string) handler.UserResponse {
	t.Helper()
	rec := do(e, http.MethodPost, "/users",
		fmt.Sprintf(`{"username":%q,"email":%q,"password":"secret"}`, username, email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handler.UserResponse](t, rec)
}

func TestBlogFlow(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/users", `{"username":"ana","email":"ana@x.com","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	user := decode[handler.UserResponse](t, rec)
	assert.Equal(t, handler.UserResponse{ID: 1, Username: "ana", Email: "ana@x.com"}, user)

	rec = do(e, http.MethodPost, "/login", `{"email":"ana@x.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, decode[handler.UserResponse](t, rec))

	rec = do(e, http.MethodPost, "/posts", `{"title":"Hi","content":"First","user_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[handler.PostResponse](t, rec)
	assert.Equal(t, uint(1), post.ID)
	assert.Equal(t, "Hi", post.Title)
	assert.Equal(t, "First", post.Content)
	assert.Equal(t, uint(1), post.UserID)
	assert.WithinDuration(t, time.Now(), post.CreatedAt, time.Minute)

	rec = do(e, http.MethodPost, "/comments", `{"content":"Nice","user_id":1,"post_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[handler.CommentResponse](t, rec)
	assert.Equal(t, uint(1), comment.ID)
	assert.Equal(t, uint(1), comment.PostID)

	rec = do(e, http.MethodGet, "/comments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.CommentResponse](t, rec)
	assert.Equal(t, "Nice", got.Content)
	assert.Equal(t, uint(1), got.UserID)
	assert.Equal(t, uint(1), got.PostID)

	rec = do(e, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, decode[handler.UserResponse](t, rec))

	rec = do(e, http.MethodGet, "/posts/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi", decode[handler.PostResponse](t, rec).Title)
}

func TestCreateUser_Duplicates(t *testing.T) {
	e := newTestServer(t)
	createUser(t, e, "ana", "ana@x.com")

	rec := do(e, http.MethodPost, "/users", `{"username":"ana","email":"other@x.com","password":"p"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username already exists", message(t, rec))

	rec = do(e, http.MethodPost, "/users", `{"username":"bob","email":"ana@x.com","password":"p"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already registered", message(t, rec))

	rec = do(e, http.MethodGet, "/users/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIncompleteData(t *testing.T) {
	e := newTestServer(t)
	createUser(t, e, "ana", "ana@x.com")

	tests := []struct {
		name string
		path string
		body string
	}{
		{"user without password", "/users", `{"username":"bob","email":"bob@x.com"}`},
		{"user with empty object", "/users", `{}`},
		{"user without body", "/users", ``},
		{"user with array body", "/users", `["username","email","password"]`},
		{"login without password", "/login", `{"email":"ana@x.com"}`},
		{"post without user", "/posts", `{"title":"t","content":"c"}`},
		{"comment without post", "/comments", `{"content":"c","user_id":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "incomplete data", message(t, rec))
		})
	}
}

func TestInvalidBody(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/users", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", message(t, rec))

	rec = do(e, http.MethodPost, "/posts", `{"title":"t","content":"c","user_id":"one"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", message(t, rec))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	e := newTestServer(t)
	createUser(t, e, "ana", "ana@x.com")

	wrong := do(e, http.MethodPost, "/login", `{"email":"ana@x.com","password":"nope"}`)
	unknown := do(e, http.MethodPost, "/login", `{"email":"ghost@x.com","password":"secret"}`)

	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "incorrect email or password", message(t, wrong))
}

func TestCreatePost_UnknownUser(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/posts", `{"title":"t","content":"c","user_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", message(t, rec))

	rec = do(e, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateComment_MissingReferences(t *testing.T) {
	e := newTestServer(t)
	createUser(t, e, "ana", "ana@x.com")

	// Both references missing: the user is reported.
	rec := do(e, http.MethodPost, "/comments", `{"content":"c","user_id":99,"post_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", message(t, rec))

	rec = do(e, http.MethodPost, "/comments", `{"content":"c","user_id":1,"post_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", message(t, rec))

	rec = do(e, http.MethodGet, "/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreate_NonPositiveReferences(t *testing.T) {
	e := newTestServer(t)
	createUser(t, e, "ana", "ana@x.com")
	rec := do(e, http.MethodPost, "/posts", `{"title":"t","content":"c","user_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"post by negative user", "/posts", `{"title":"t","content":"c","user_id":-1}`, "user not found"},
		{"post by user zero", "/posts", `{"title":"t","content":"c","user_id":0}`, "user not found"},
		{"comment by negative user", "/comments", `{"content":"c","user_id":-5,"post_id":1}`, "user not found"},
		{"comment on negative post", "/comments", `{"content":"c","user_id":1,"post_id":-1}`, "post not found"},
		{"negative user reported before negative post", "/comments", `{"content":"c","user_id":-1,"post_id":-1}`, "user not found"},
		{"unknown user reported before negative post", "/comments", `{"content":"c","user_id":99,"post_id":-1}`, "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, tt.message, message(t, rec))
		})
	}

	rec = do(e, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handler.PostResponse](t, rec), 1)

	rec = do(e, http.MethodGet, "/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestLongPassword(t *testing.T) {
	e := newTestServer(t)
	long := strings.Repeat("p", 80)

	rec := do(e, http.MethodPost, "/users",
		fmt.Sprintf(`{"username":"ana","email":"ana@x.com","password":%q}`, long))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/login", fmt.Sprintf(`{"email":"ana@x.com","password":%q}`, long))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Same first 72 bytes, different tail.
	rec = do(e, http.MethodPost, "/login",
		fmt.Sprintf(`{"email":"ana@x.com","password":%q}`, strings.Repeat("p", 72)+"qqqqqqqq"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "incorrect email or password", message(t, rec))
}

func TestListPosts(t *testing.T) {
	e := newTestServer(t)
	createUser(t, e, "ana", "ana@x.com")

	const n = 4
	for i := 1; i <= n; i++ {
		rec := do(e, http.MethodPost, "/posts", fmt.Sprintf(`{"title":"post %d","content":"c","user_id":1}`, i))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(e, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]handler.PostResponse](t, rec)
	require.Len(t, posts, n)
	for i, p := range posts {
		assert.Equal(t, uint(i+1), p.ID)
		assert.Equal(t, fmt.Sprintf("post %d", i+1), p.Title)
	}
}

func TestUpdateUser(t *testing.T) {
	e := newTestServer(t)
	ana := createUser(t, e, "ana", "ana@x.com")
	createUser(t, e, "bob", "bob@x.com")

	rec := do(e, http.MethodPut, "/users/1", `{"email":"ana@y.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handler.UserResponse{ID: ana.ID, Username: "ana", Email: "ana@y.com"}, decode[handler.UserResponse](t, rec))

	rec = do(e, http.MethodPut, "/users/1", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana@y.com", decode[handler.UserResponse](t, rec).Email)

	rec = do(e, http.MethodPut, "/users/1", `{"username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username already exists", message(t, rec))

	rec = do(e, http.MethodPut, "/users/1", `{"email":"bob@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already registered", message(t, rec))

	rec = do(e, http.MethodPut, "/users/42", `{"email":"z@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", message(t, rec))

	// The user lookup comes before the body is read.
	rec = do(e, http.MethodPut, "/users/42", `{"email":`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", message(t, rec))

	rec = do(e, http.MethodPut, "/users/1", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", message(t, rec))

	rec = do(e, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", decode[handler.UserResponse](t, rec).Username)

	// The login email follows the update.
	rec = do(e, http.MethodPost, "/login", `{"email":"ana@y.com","password":"secret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		path    string
		message string
	}{
		{"/users/7", "user not found"},
		{"/users/abc", "user not found"},
		{"/users/-1", "user not found"},
		{"/posts/7", "post not found"},
		{"/posts/1.5", "post not found"},
		{"/comments/7", "comment not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(e, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, tt.message, message(t, rec))
		})
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmanity/internal/domain"
	"blogmanity/internal/mailer"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
	"blogmanity/internal/repository/sqlite"
	"blogmanity/internal/service"
	"blogmanity/internal/token"
)

type testServer struct {
	router *gin.Engine
	users  repository.UserRepository
	posts  service.PostService
	tokens *token.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	feedbackRepo := sqlite.NewFeedbackRepository(db)
	pocketRepo := sqlite.NewPocketRepository(db)
	for _, init := range []func(context.Context) error{
		userRepo.Init, postRepo.Init, feedbackRepo.Init, pocketRepo.Init,
	} {
		require.NoError(t, init(ctx))
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := token.NewService("test-secret", time.Hour)
	userService := service.NewUserService(userRepo, pocketRepo, &mailer.LogMailer{Logger: logger})
	postService := service.NewPostService(postRepo, feedbackRepo)

	handler := NewHandler(
		userService,
		postService,
		service.NewPocketService(pocketRepo, postRepo),
		service.NewFeedbackService(feedbackRepo, postRepo),
		Options{
			Tokens:    tokens,
			CookieTTL: 24 * time.Hour,
			DevMode:   true,
			Logger:    logger,
		},
	)

	router := gin.New()
	handler.RegisterRoutes(router)

	return &testServer{
		router: router,
		users:  userRepo,
		posts:  postService,
		tokens: tokens,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func parseEmptyQuery() query.Directives {
	return query.Parse(nil)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (ts *testServer) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := ts.request(t, http.MethodPost, "/api/v1/users/signup", gin.H{
		"firstname": "Jane",
		"lastname":  "Doe",
		"email":     email,
		"password":  "correct horse",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (ts *testServer) promote(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	user, err := ts.users.GetByEmail(ctx, email)
	require.NoError(t, err)
	user.Role = domain.RoleAdmin
	require.NoError(t, ts.users.Update(ctx, user))
}

func TestSignupAndMe(t *testing.T) {
	ts := newTestServer(t)

	cookie := ts.signup(t, "jane@example.com")
	require.True(t, cookie.HttpOnly)

	rec := ts.request(t, http.MethodGet, "/api/v1/users/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	// the public self view carries no role or credential fields
	assert.NotContains(t, user, "role")
	assert.NotContains(t, user, "password")
}

func TestProtectedRouteWithoutCookie(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/users/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "You are not logged in, please login to continue", body["message"])
}

func TestProtectedRouteWithGarbageToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/users/me", nil, &http.Cookie{Name: "jwt", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRouteRequiresAdminRole(t *testing.T) {
	ts := newTestServer(t)

	cookie := ts.signup(t, "jane@example.com")

	rec := ts.request(t, http.MethodGet, "/api/v1/users", nil, cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You are not allowed to access this route", decodeBody(t, rec)["message"])

	ts.promote(t, "jane@example.com")

	// the role check reads current state, not the token
	rec = ts.request(t, http.MethodGet, "/api/v1/users", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["results"])

	// and the user-only routes now reject the admin; there is no hierarchy
	rec = ts.request(t, http.MethodGet, "/api/v1/users/myPocket", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPasswordChangeInvalidatesOldTokens(t *testing.T) {
	ts := newTestServer(t)

	cookie := ts.signup(t, "jane@example.com")
	ctx := context.Background()

	user, err := ts.users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NoError(t, ts.users.SetPassword(ctx, user.ID, user.PasswordHash, time.Now().Add(2*time.Second)))

	rec := ts.request(t, http.MethodGet, "/api/v1/users/me", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You recently changed your password, please login to continue", decodeBody(t, rec)["message"])
}

func TestDeactivatedAccountLooksDeleted(t *testing.T) {
	ts := newTestServer(t)

	cookie := ts.signup(t, "jane@example.com")

	rec := ts.request(t, http.MethodPatch, "/api/v1/users/deleteMe", gin.H{"password": "correct horse"}, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.request(t, http.MethodGet, "/api/v1/users/me", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "This user does not exist", decodeBody(t, rec)["message"])
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "jane@example.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"email":    "jane@example.com",
		"password": "wrong pass",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "email or password are incorrect", decodeBody(t, rec)["message"])

	rec = ts.request(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"email":    "jane@example.com",
		"password": "correct horse",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t, "jane@example.com")

	rec := ts.request(t, http.MethodGet, "/api/v1/users/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestPostVisibility(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	authorCookie := ts.signup(t, "author@example.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/posts", gin.H{
		"title":       "Visible later",
		"tags":        []string{"go"},
		"description": "d",
		"content":     "hidden from the public list",
	}, authorCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// unvalidated posts are invisible to the public
	rec = ts.request(t, http.MethodGet, "/api/v1/posts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 0, body["results"])

	author, err := ts.users.GetByEmail(ctx, "author@example.com")
	require.NoError(t, err)
	admin := &domain.User{ID: author.ID, Role: domain.RoleAdmin, Active: true}
	posts, err := ts.posts.List(ctx, parseEmptyQuery(), true)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	approve := true
	_, err = ts.posts.Update(ctx, admin, posts[0].ID, service.PostUpdate{Validated: &approve})
	require.NoError(t, err)

	// validated posts appear, but without content
	rec = ts.request(t, http.MethodGet, "/api/v1/posts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.EqualValues(t, 1, body["results"])
	listed := body["data"].(map[string]any)["posts"].([]any)[0].(map[string]any)
	assert.NotContains(t, listed, "content")

	// an admin listing includes everything
	ts.promote(t, "author@example.com")
	rec = ts.request(t, http.MethodGet, "/api/v1/posts", nil, authorCookie)
	body = decodeBody(t, rec)
	listed = body["data"].(map[string]any)["posts"].([]any)[0].(map[string]any)
	assert.Contains(t, listed, "content")
}

func TestListProjection(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.signup(t, "jane@example.com")
	ts.promote(t, "jane@example.com")

	rec := ts.request(t, http.MethodGet, "/api/v1/users?fields=email,firstname", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	users := body["data"].(map[string]any)["users"].([]any)
	require.Len(t, users, 1)
	doc := users[0].(map[string]any)
	assert.Len(t, doc, 2)
	assert.Contains(t, doc, "email")
	assert.Contains(t, doc, "firstname")
}

func TestPocketRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	authorCookie := ts.signup(t, "author@example.com")
	readerCookie := ts.signup(t, "reader@example.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/posts", gin.H{
		"title":       "Bookmark me",
		"tags":        []string{"go"},
		"description": "d",
		"content":     "c",
	}, authorCookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	posts, err := ts.posts.List(ctx, parseEmptyQuery(), true)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	postID := posts[0].ID

	rec = ts.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/users/myPocket/add/%d", postID), nil, readerCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/users/myPocket/add/%d", postID), nil, readerCookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This post already exists in your pocket", decodeBody(t, rec)["message"])

	rec = ts.request(t, http.MethodGet, "/api/v1/users/myPocket", nil, readerCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	pocket := decodeBody(t, rec)["data"].(map[string]any)["pocket"].(map[string]any)
	assert.Len(t, pocket["posts"].([]any), 1)

	rec = ts.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/users/myPocket/remove/%d", postID), nil, readerCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	pocket = decodeBody(t, rec)["data"].(map[string]any)["pocket"].(map[string]any)
	assert.Empty(t, pocket["posts"])
}

func TestFeedbackRoutes(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	authorCookie := ts.signup(t, "author@example.com")
	readerCookie := ts.signup(t, "reader@example.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/posts", gin.H{
		"title":       "React to me",
		"tags":        []string{"go"},
		"description": "d",
		"content":     "c",
	}, authorCookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	posts, err := ts.posts.List(ctx, parseEmptyQuery(), true)
	require.NoError(t, err)
	postID := posts[0].ID
	base := fmt.Sprintf("/api/v1/posts/%d/feedback", postID)

	rec = ts.request(t, http.MethodPost, base, gin.H{"type": "like"}, readerCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.request(t, http.MethodPost, base, gin.H{"type": "like"}, readerCookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You already liked this post", decodeBody(t, rec)["message"])

	rec = ts.request(t, http.MethodPost, base, gin.H{"type": "comment", "content": "great read"}, readerCookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)["data"].(map[string]any)["feedback"].(map[string]any)
	feedbackID := int64(created["id"].(float64))

	rec = ts.request(t, http.MethodGet, base, nil, authorCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeBody(t, rec)["results"])

	// only the author of the comment (or an admin) may edit it
	rec = ts.request(t, http.MethodPatch, fmt.Sprintf("%s/%d", base, feedbackID), gin.H{"content": "hijacked"}, authorCookie)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodPatch, fmt.Sprintf("%s/%d", base, feedbackID), gin.H{"content": "edited"}, readerCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, feedbackID), nil, readerCookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

package apiserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/mediatypes"
	"social-go/internal/models"
	"social-go/internal/services"
	"social-go/internal/storage"
	"social-go/internal/storage/memory"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	repos   *storage.Repositories
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecretKey: "test-secret",
			JWTExpiry:    time.Hour,
			Issuer:       "social-go-test",
			FrontendURL:  "http://frontend.test",
		},
		Storage: config.StorageConfig{
			Type:          "local",
			LocalPath:     t.TempDir(),
			MaxFileSizeMB: 1,
			MaxPostImages: 2,
		},
		Feed: config.FeedConfig{DefaultPageSize: 5, MaxPageSize: 100, RecommendLimit: 10},
	}
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, testConfig(t))
}

func newTestServerWith(t *testing.T, cfg config.Config) *testServer {
	return newTestServerWithMedia(t, cfg, nil)
}

// newTestServerWithMedia lets wrap replace the local media store.
func newTestServerWithMedia(t *testing.T, cfg config.Config, wrap func(mediatypes.MediaStore) mediatypes.MediaStore) *testServer {
	t.Helper()
	logger := zap.NewNop()
	repos := memory.NewStore().Repositories()
	local, err := storage.NewLocalMediaStore(cfg.Storage, "/uploads")
	require.NoError(t, err)
	var media mediatypes.MediaStore = local
	if wrap != nil {
		media = wrap(local)
	}

	likes := services.NewLikeLedger(repos, logger)
	content := services.NewContentService(repos, media, services.NewLogOrphanRecorder(logger), cfg.Storage.MaxPostImages, logger)
	feed := services.NewFeedService(repos, likes, logger)
	friends := services.NewFriendshipService(repos, logger)
	users := services.NewUserService(repos.Users, media, logger)
	authService := services.NewAuthService(repos.Users, auth.NewMemoryTokenBlacklist(), cfg.Auth, logger)

	router := NewRouter(Handlers{
		Auth:    NewAuthHandler(authService, cfg.Auth, logger),
		OAuth:   NewOAuthHandler(authService, cfg.Auth, logger),
		Users:   NewUserHandler(users, friends, cfg, logger),
		Friends: NewFriendRequestHandler(friends, cfg, logger),
		Content: NewContentHandler(content, feed, likes, cfg, logger),
	}, authService, logger)
	return &testServer{t: t, handler: router, repos: repos}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type session struct {
	token string
	id    string
}

func (s *testServer) signUp(first string) session {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/users/sign-up", "", map[string]string{
		"username":        strings.ToLower(first) + "@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
		"firstName":       first,
		"lastName":        "Tester",
		"birthday":        "1990-04-01",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	decode(s.t, rec, &resp)
	require.NotEmpty(s.t, resp.Token)
	return session{token: resp.Token, id: resp.UserInfo.ID}
}

func (s *testServer) createPost(sess session, text string) services.PostView {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/posts", sess.token, map[string]string{"text": text})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var post services.PostView
	decode(s.t, rec, &post)
	return post
}

func (s *testServer) createComment(sess session, postID, text string) services.CommentView {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/comments/"+postID, sess.token, map[string]string{"text": text})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var comment services.CommentView
	decode(s.t, rec, &comment)
	return comment
}

func (s *testServer) createReply(sess session, commentID, text string) services.ReplyView {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/replies/"+commentID, sess.token, map[string]string{"text": text})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var reply services.ReplyView
	decode(s.t, rec, &reply)
	return reply
}

func (s *testServer) befriend(a, b session) {
	s.t.Helper()
	rec := s.do(http.MethodPut, "/users/"+b.id+"/friends-requests", a.token, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPut, "/users/friend-requests/"+a.id+"/accept", b.token, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, rec, &resp)
	return resp.Error
}

// imageForm builds a multipart body with the given text and files of the given content type.
func imageForm(t *testing.T, field, text, contentType string, sizes ...int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	for i, size := range sizes {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="img%d.png"`, field, i))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (s *testServer) upload(method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorKind(t, rec))
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	id := models.NewID()
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/posts"},
		{http.MethodGet, "/posts/user-feed"},
		{http.MethodPost, "/posts/" + id + "/like"},
		{http.MethodDelete, "/posts/" + id},
		{http.MethodPut, "/users/edit-info"},
		{http.MethodPost, "/users/log-out"},
	} {
		rec := s.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestFacebookRoutesOnlyWhenConfigured(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/auth/facebook", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	cfg := testConfig(t)
	cfg.Auth.Facebook = config.OAuthClient{ClientID: "app", ClientSecret: "secret", RedirectURL: "http://api.test/auth/facebook/callback"}
	s = newTestServerWith(t, cfg)

	rec = s.do(http.MethodGet, "/auth/facebook", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "facebook.com")
	assert.Contains(t, rec.Header().Get("Location"), "client_id=app")

	// callback without the matching state cookie
	rec = s.do(http.MethodGet, "/auth/facebook/callback?state=x&code=y", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

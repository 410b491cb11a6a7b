package http_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/ai"
	"github.com/aicreat/aicreat/auth"
	"github.com/aicreat/aicreat/config"
	apihttp "github.com/aicreat/aicreat/http"
)

// MockRepo is a mock implementation of http.Repository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) CreateProject(ctx context.Context, name string) (aicreat.Project, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(aicreat.Project), args.Error(1)
}

func (m *MockRepo) GetProject(ctx context.Context, id uuid.UUID) (aicreat.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(aicreat.Project), args.Error(1)
}

func (m *MockRepo) DeleteProject(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepo) AddAsset(ctx context.Context, a aicreat.Asset) (aicreat.Asset, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(aicreat.Asset), args.Error(1)
}

func (m *MockRepo) ListAssets(ctx context.Context, projectID uuid.UUID) ([]aicreat.Asset, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]aicreat.Asset), args.Error(1)
}

// MockStorage is a mock implementation of http.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Check(filename string) (string, error) {
	args := m.Called(filename)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Save(ctx context.Context, projectID uuid.UUID, filename string, content io.Reader) (aicreat.SavedFile, error) {
	args := m.Called(ctx, projectID, filename, content)
	return args.Get(0).(aicreat.SavedFile), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockStorage) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

type testServer struct {
	router  http.Handler
	repo    *MockRepo
	storage *MockStorage
	tokens  *auth.Tokens
}

// newSettings builds settings from env only, ignoring the caller's environment.
func newSettings(t *testing.T, env map[string]string) *config.Settings {
	t.Helper()
	for _, name := range config.EnvVars() {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	s, err := config.Build(nil)
	require.NoError(t, err)
	return s
}

func newTestServer(t *testing.T, env map[string]string) *testServer {
	t.Helper()
	settings := newSettings(t, env)

	tokens, err := auth.NewTokens(settings.Auth())
	require.NoError(t, err)

	ts := &testServer{
		repo:    new(MockRepo),
		storage: new(MockStorage),
		tokens:  tokens,
	}
	ts.router = apihttp.NewHandler(settings, apihttp.Deps{
		Repo:      ts.repo,
		Storage:   ts.storage,
		Tokens:    tokens,
		Providers: ai.NewRegistry(settings.AI()),
	}).Router()
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) authorize(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	token, err := ts.tokens.Issue("user-1")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return req
}

type part struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, projectName string, files ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	require.NoError(t, mw.WriteField("projectName", projectName))
	for _, f := range files {
		w, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = w.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

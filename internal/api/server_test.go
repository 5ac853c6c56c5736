package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vault/internal/auth"
	"github.com/abhisek/vault/internal/chat"
	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/gatekeeper"
	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/llm"
	"github.com/abhisek/vault/internal/progress"
	"github.com/abhisek/vault/internal/quiz"
	"github.com/abhisek/vault/internal/store"
	"github.com/abhisek/vault/internal/userlock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	mock   *llm.MockProvider
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	gen := content.NewGenerator(mock, content.Config{Timeout: time.Second})
	locks := userlock.New()

	svc := Services{
		Auth:       auth.NewService(st.UserRepo(), auth.NewTokens("api-test-secret-long-enough-for-hs256", time.Hour)),
		Progress:   progress.NewService(st.ProgressRepo(), locks),
		Gatekeeper: gatekeeper.NewService(gen, st.ProgressRepo(), locks, nil),
		Quiz:       quiz.NewOrchestrator(gen, quiz.NewMemoryStore(), st.ProgressRepo(), locks, rand.New(rand.NewPCG(7, 7)), nil),
		Chat:       chat.NewService(gen, nil),
	}
	ts := &testServer{
		router: NewRouter(svc, Options{Version: "test", CORSOrigins: []string{"https://vault.example"}}),
		mock:   mock,
	}

	rec := ts.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"email": "ada@example.com", "password": "correct horse", "confirm_password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sess auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	ts.token = sess.AccessToken
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}

func TestHealthAndLevels(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/levels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[struct {
		Levels []levels.Level `json:"levels"`
	}](t, rec)
	require.Len(t, got.Levels, 5)
	assert.Equal(t, "Novice", got.Levels[0].Name)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	for _, path := range []string{"/session", "/vault/quiz/next", "/auth/me"} {
		rec := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	ts.token = "not-a-jwt"
	rec := ts.do(t, http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccountFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[auth.Profile](t, rec)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.False(t, me.IsOnboarded)

	rec = ts.do(t, http.MethodPost, "/auth/onboard", map[string]string{"username": "ada"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[auth.Profile](t, rec).IsOnboarded)

	rec = ts.do(t, http.MethodPost, "/auth/onboard", map[string]string{"username": "ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/auth/profile", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"email": "ada@example.com", "password": "12345678", "confirm_password": "12345678",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.token = ""
	rec = ts.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "ada@example.com", "password": "nope nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "ada@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionCRUD(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"topic":null,"current_level":null,"diagnostic_attempts":0,"diagnostic_passed":false,"hint_stage":0,"updated_at":"0001-01-01T00:00:00Z"}`, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/session", map[string]any{"topic": "hashing", "current_level": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decodeBody[store.Progress](t, rec)
	assert.Equal(t, "hashing", *p.Topic)
	assert.Equal(t, 2, *p.CurrentLevel)

	rec = ts.do(t, http.MethodPatch, "/session", map[string]any{"topic": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	p = decodeBody[store.Progress](t, rec)
	assert.Nil(t, p.Topic)
	assert.Equal(t, 2, *p.CurrentLevel)

	rec = ts.do(t, http.MethodPatch, "/session", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, progress.ErrNothingToUpdate.Error(), errorOf(t, rec))

	rec = ts.do(t, http.MethodPatch, "/session", map[string]any{"current_level": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/session", nil)
	assert.Nil(t, decodeBody[store.Progress](t, rec).CurrentLevel)
}

func TestGatekeeperRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/vault/submit", map[string]any{"topic": "hashing", "level": 2, "user_answer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "no active session")

	rec = ts.do(t, http.MethodPost, "/vault/gatekeeper", map[string]any{"topic": "hashing", "level": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/vault/gatekeeper", map[string]any{"level": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "topic is required")

	ts.mock.AddResponse(llm.TextResponse("Explain why a hash map lookup is O(1) on average."))
	rec = ts.do(t, http.MethodPost, "/vault/gatekeeper", map[string]any{"topic": "hashing", "level": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ts.mock.AddResponse(llm.JSONResponse(map[string]any{"passed": false, "feedback": "Not quite."}))
	ts.mock.AddResponse(llm.TextResponse("Look at this:\n```mermaid\ngraph TD; A-->B\n```"))
	rec = ts.do(t, http.MethodPost, "/vault/submit", map[string]any{"topic": "hashing", "level": 2, "user_answer": "magic"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reply := decodeBody[content.Reply](t, rec)
	require.NotNil(t, reply.Passed)
	assert.False(t, *reply.Passed)
	assert.Equal(t, "graph TD; A-->B", reply.Mermaid)

	ts.mock.AddResponse(llm.TextResponse("Lesson body"))
	rec = ts.do(t, http.MethodPost, "/vault/lesson", map[string]any{"topic": "hashing", "level": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lesson body", decodeBody[content.Reply](t, rec).Content)
}

func TestGenerationErrorsMapToServerStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/vault/gatekeeper", map[string]any{"topic": "hashing", "level": 1})
	assert.Equal(t, http.StatusBadGateway, rec.Code, "empty mock queue is an unavailable provider")

	ts.mock.AddResponse(llm.TextResponse(`""`))
	rec = ts.do(t, http.MethodPost, "/vault/gatekeeper", map[string]any{"topic": "hashing", "level": 1})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "content generation failed", errorOf(t, rec))
}

func TestQuizRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/vault/quiz/next", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	qs := make([]string, 8)
	for i := range qs {
		qs[i] = fmt.Sprintf("What does step %d of probing do?", i+1)
	}
	ts.mock.AddResponse(llm.JSONResponse(qs))
	rec = ts.do(t, http.MethodPost, "/vault/quiz/start", map[string]any{"topic": "hashing", "level": 2, "quiz_mode": "popquiz"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[quiz.Question](t, rec)
	require.GreaterOrEqual(t, first.Total, 1)
	require.LessOrEqual(t, first.Total, 2)

	rec = ts.do(t, http.MethodPost, "/vault/quiz/answer", map[string]any{"user_answer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "question_index is required")

	var out map[string]any
	for i := 0; i < first.Total; i++ {
		ts.mock.AddResponse(llm.JSONResponse(map[string]any{"passed": true, "feedback": "Yes."}))
		if i == first.Total-1 {
			ts.mock.AddResponse(llm.TextResponse("All correct."))
		}
		rec = ts.do(t, http.MethodPost, "/vault/quiz/answer", map[string]any{"question_index": i, "user_answer": "it moves on"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out = decodeBody[map[string]any](t, rec)
		assert.Equal(t, "popquiz", out["quiz_mode"])
	}
	assert.Equal(t, true, out["quiz_complete"])
	assert.Equal(t, false, out["promoted"])
	assert.Equal(t, float64(100), out["percent"])
	assert.Equal(t, "All correct.", out["summary"])

	rec = ts.do(t, http.MethodGet, "/vault/quiz/next", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRoute(t *testing.T) {
	ts := newTestServer(t)

	ts.mock.AddResponse(llm.TextResponse("Chaining keeps a list per bucket.\n[LEVELUP_TRIGGER]"))
	rec := ts.do(t, http.MethodPost, "/vault/chat", map[string]any{
		"topic": "hashing", "level": 2,
		"history": []map[string]string{{"role": "user", "content": "how do collisions work?"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"content":"Chaining keeps a list per bucket.","trigger_quiz":false,"trigger_levelup":true}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/vault/chat", map[string]any{
		"topic": "hashing", "level": 2,
		"history": []map[string]string{{"role": "system", "content": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	req.Header.Set("Origin", "https://vault.example")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://vault.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(requestIDKey))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("enter: %w", levels.ErrInvalidLevel), http.StatusBadRequest},
		{quiz.ErrQuizComplete, http.StatusBadRequest},
		{auth.ErrUsernameTaken, http.StatusConflict},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{fmt.Errorf("x: %w", content.ErrGenerationTimeout), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{content.ErrGenerationFailure, http.StatusInternalServerError},
		{&llm.ErrRateLimit{Err: errors.New("slow down")}, http.StatusBadGateway},
		{fmt.Errorf("call: %w", &llm.ErrProviderUnavailable{}), http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

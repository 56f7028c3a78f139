package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mariana/studydeck/internal/api"
	"github.com/mariana/studydeck/internal/repository/sqlite"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/session"
	"github.com/mariana/studydeck/internal/testutil"
	"github.com/mariana/studydeck/internal/testutil/mocks"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	database := testutil.NewTestDB(t)
	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	queue := new(mocks.MockJobQueue)
	queue.On("TrySubmit", mock.Anything).Return(true).Maybe()

	registry := session.NewRegistry(time.Minute)
	srv := api.NewServer(
		database.DB,
		services.NewDeckService(deckRepo, cardRepo),
		services.NewStudyService(deckRepo, cardRepo, reviewRepo, statsRepo, registry, queue, 100),
		services.NewImportService(deckRepo, cardRepo),
		services.NewStatsService(deckRepo, cardRepo, reviewRepo, statsRepo),
		statsRepo,
		queue,
		1<<20,
	)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestAPI_DeckLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, deck := doJSON(t, http.MethodPost, ts.URL+"/api/decks", map[string]any{
		"name": "Biology", "subject": "science",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	deckID := int64(deck["id"].(float64))

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/decks/%d/cards", ts.URL, deckID), map[string]any{
		"front": "What is osmosis?", "back": "Diffusion of water",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, listed := doJSON(t, http.MethodGet, ts.URL+"/api/decks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed["decks"], 1)

	resp, browse := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/decks/%d/cards", ts.URL, deckID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), browse["total"])
	assert.Len(t, browse["new"], 1)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/decks/%d", ts.URL, deckID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_DeckNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/decks/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestAPI_CreateDeckValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/decks", map[string]any{"subject": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestAPI_StudyFlow(t *testing.T) {
	ts := newTestServer(t)

	_, deck := doJSON(t, http.MethodPost, ts.URL+"/api/decks", map[string]any{"name": "Biology"})
	deckID := int64(deck["id"].(float64))

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/decks/%d/cards", ts.URL, deckID), map[string]any{
			"front": fmt.Sprintf("q%d", i), "back": fmt.Sprintf("a%d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, sess := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/decks/%d/sessions", ts.URL, deckID), map[string]any{
		"mode": "new", "shuffle": false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := sess["id"].(string)
	assert.Equal(t, "awaiting_reveal", sess["state"])
	assert.Equal(t, float64(2), sess["total"])

	card := sess["card"].(map[string]any)
	assert.NotEmpty(t, card["front"])
	assert.Empty(t, card["back"], "back must stay hidden before reveal")

	// Rating before reveal is rejected.
	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/sessions/%s/rate", ts.URL, sessionID), map[string]any{"rating": 3})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["error"].(map[string]any)["code"])

	resp, revealed := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/sessions/%s/reveal", ts.URL, sessionID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "awaiting_rating", revealed["state"])
	assert.NotEmpty(t, revealed["card"].(map[string]any)["back"])

	resp, rated := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/sessions/%s/rate", ts.URL, sessionID), map[string]any{"rating": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "awaiting_reveal", rated["state"])
	assert.Equal(t, float64(1), rated["position"])

	// Finish the second card; the session completes.
	_, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/sessions/%s/reveal", ts.URL, sessionID), nil)
	resp, final := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/sessions/%s/rate", ts.URL, sessionID), map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "complete", final["state"])

	stats := final["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["good"])
	assert.Equal(t, float64(1), stats["easy"])
	assert.Equal(t, float64(2), stats["reviewed"])
}

func TestAPI_SyncImport(t *testing.T) {
	ts := newTestServer(t)

	_, deck := doJSON(t, http.MethodPost, ts.URL+"/api/decks", map[string]any{"name": "Biology"})
	deckID := int64(deck["id"].(float64))

	csv := "front,back\nq1,a1\nq2,a2\n"
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/decks/%d/import?sync=1", ts.URL, deckID), strings.NewReader(csv))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(2), body["imported"])
}

func TestAPI_AsyncImportQueues(t *testing.T) {
	ts := newTestServer(t)

	_, deck := doJSON(t, http.MethodPost, ts.URL+"/api/decks", map[string]any{"name": "Biology"})
	deckID := int64(deck["id"].(float64))

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/decks/%d/import", ts.URL, deckID), strings.NewReader("q1,a1\n"))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestAPI_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

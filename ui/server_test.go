package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aireliance/adapters/rng"
	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal/experiment"
	"aireliance/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	server  *Server
	manager *experiment.SessionManager
	sink    *testkit.MemorySink
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	sink := testkit.NewMemorySink()
	manager, err := experiment.NewSessionManager(claim.DefaultBank(), trial.DefaultSchedule(), rng.NewSeededRNG(7), experiment.Dependencies{
		Oracle: testkit.StaticOracle{Answer: "False. This is a common misconception."},
		Sink:   sink,
	})
	require.NoError(t, err)

	return &testServer{
		t:       t,
		server:  NewServer(Config{GinMode: gin.TestMode}, manager, nil, nil),
		manager: manager,
		sink:    sink,
	}
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) createSession() string {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/sessions", nil)
	require.Equal(ts.t, http.StatusCreated, w.Code)
	body := decode(ts.t, w)
	return body["participant_id"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	_, err := core.ParseParticipantID(body["participant_id"].(string))
	assert.NoError(t, err)
	assert.Equal(t, float64(20), body["total_trials"])
	assert.Equal(t, float64(10), body["ai_eligible_trials"])
	assert.Equal(t, "intro", body["view"].(map[string]interface{})["phase"])
}

func TestUnknownSessionIs404(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/sessions/"+core.NewParticipantID().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])

	w = ts.do(http.MethodPost, "/api/sessions/garbage/begin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActionsBeforeBegin(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession()

	w := ts.do(http.MethodPut, "/api/sessions/"+id+"/answer", gin.H{"answer": true})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
}

func TestBeginTwiceConflicts(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession()

	w := ts.do(http.MethodPost, "/api/sessions/"+id+"/begin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, "active", view["phase"])
	assert.Equal(t, float64(0), view["trial_index"])
	assert.NotEmpty(t, view["claim"])
	assert.Equal(t, true, view["ai_offered"])
	assert.Equal(t, "hidden", view["ai_status"])

	w = ts.do(http.MethodPost, "/api/sessions/"+id+"/begin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInputValidation(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession()
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/sessions/"+id+"/begin", nil).Code)

	w := ts.do(http.MethodPut, "/api/sessions/"+id+"/answer", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, w)["code"])

	w = ts.do(http.MethodPut, "/api/sessions/"+id+"/confidence", gin.H{"confidence": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(http.MethodPost, "/api/sessions/"+id+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(http.MethodPut, "/api/sessions/"+id+"/answer", gin.H{"answer": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodPut, "/api/sessions/"+id+"/confidence", gin.H{"confidence": 4})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, false, view["answer"])
	assert.Equal(t, float64(4), view["confidence"])
}

func TestRevealIsOneShot(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession()
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/sessions/"+id+"/begin", nil).Code)

	w := ts.do(http.MethodPost, "/api/sessions/"+id+"/reveal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["revealed"])

	w = ts.do(http.MethodPost, "/api/sessions/"+id+"/reveal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["revealed"])

	session, err := ts.manager.GetSession(context.Background(), id)
	require.NoError(t, err)
	session.Wait()

	view := decode(t, ts.do(http.MethodGet, "/api/sessions/"+id, nil))
	assert.Equal(t, "ready", view["ai_status"])
	assert.Equal(t, "False. This is a common misconception.", view["ai_answer"])
}

func TestFullRun(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession()
	base := "/api/sessions/" + id
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/begin", nil).Code)

	assert.Equal(t, http.StatusConflict, ts.do(http.MethodGet, base+"/summary", nil).Code)

	var last map[string]interface{}
	for i := 0; i < 20; i++ {
		if i < 10 {
			require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/reveal", nil).Code)
		} else {
			assert.Equal(t, http.StatusUnprocessableEntity, ts.do(http.MethodPost, base+"/reveal", nil).Code)
		}
		require.Equal(t, http.StatusOK, ts.do(http.MethodPut, base+"/answer", gin.H{"answer": true}).Code)
		require.Equal(t, http.StatusOK, ts.do(http.MethodPut, base+"/confidence", gin.H{"confidence": 5}).Code)

		w := ts.do(http.MethodPost, base+"/submit", nil)
		require.Equal(t, http.StatusOK, w.Code)
		last = decode(t, w)
		assert.Equal(t, i == 19, last["completed"], "trial %d", i)
	}

	assert.Equal(t, "Experiment complete! Your results were submitted.", last["notice"])
	assert.Equal(t, "succeeded", last["submission"].(map[string]interface{})["state"])
	assert.Equal(t, 1, ts.sink.Calls())
	stored, ok := ts.sink.Results(core.ParticipantID(id))
	require.True(t, ok)
	assert.Len(t, stored, 20)

	w := ts.do(http.MethodPut, base+"/answer", gin.H{"answer": false})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodGet, base+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]interface{})
	assert.Equal(t, float64(20), summary["trials"])
	assert.Equal(t, float64(8*trial.PointsPerCorrect), summary["score"], "8 of the built-in claims are true")
	assert.Equal(t, float64(1), summary["ai_usage_rate"])

	w = ts.do(http.MethodGet, base+"/results.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, base, nil).Code)
}

func TestSubmissionFailureNotice(t *testing.T) {
	ts := newTestServer(t)
	ts.sink.Err = assert.AnError
	id := ts.createSession()
	base := "/api/sessions/" + id
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/begin", nil).Code)

	var last map[string]interface{}
	for i := 0; i < 20; i++ {
		ts.do(http.MethodPut, base+"/answer", gin.H{"answer": false})
		ts.do(http.MethodPut, base+"/confidence", gin.H{"confidence": 3})
		w := ts.do(http.MethodPost, base+"/submit", nil)
		require.Equal(t, http.StatusOK, w.Code)
		last = decode(t, w)
	}

	assert.Equal(t, true, last["completed"])
	assert.Equal(t, "Experiment complete, but there was an error submitting your results.", last["notice"])
	assert.Equal(t, float64(12*trial.PointsPerCorrect), last["score"])

	view := decode(t, ts.do(http.MethodGet, base, nil))
	assert.Equal(t, "complete", view["phase"])
	assert.Equal(t, float64(20), view["completed_trials"])
}

func TestDiscardBeforeCompletionConflicts(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession()
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodDelete, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodGet, "/api/sessions/"+id+"/results.xlsx", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodOptions, "/api/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

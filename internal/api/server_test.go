package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsync/internal/analysis"
	"scholarsync/internal/config"
	"scholarsync/internal/logging"
	"scholarsync/internal/pipeline"
)

type fakeSteps struct {
	text    string
	sumErr  error
	gotData []byte
}

func (f *fakeSteps) ExtractText(_ context.Context, doc pipeline.Document) (string, error) {
	f.gotData = doc.Data
	return f.text, nil
}

func (f *fakeSteps) ExtractMetadata(context.Context, string) (analysis.Metadata, error) {
	return analysis.Metadata{Title: "Attention Is All You Need", Abstract: "Transformers."}, nil
}

func (f *fakeSteps) Summarize(context.Context, string) (analysis.Summary, error) {
	if f.sumErr != nil {
		return analysis.Summary{}, f.sumErr
	}
	return analysis.Summary{MainSummary: "A new architecture.", Contributions: []string{"attention"}, Method: []string{}, Results: []string{}, Limitations: []string{}}, nil
}

func (f *fakeSteps) FindRelated(context.Context, string, string) ([]analysis.RelatedPaper, error) {
	return []analysis.RelatedPaper{}, nil
}

func (f *fakeSteps) Evaluate(context.Context, string, analysis.Summary) (analysis.Evaluation, error) {
	return analysis.Evaluation{Score: 90, SemanticSimilarityScore: 88, KeypointCoverageScore: 92, Reasoning: "ok"}, nil
}

type harness struct {
	steps *fakeSteps
	orch  *pipeline.Orchestrator
	log   *pipeline.MemoryLog
	h     http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	steps := &fakeSteps{text: "Attention Is All You Need\nAbstract: Transformers."}
	log := pipeline.NewMemoryLog()
	orch := pipeline.New(steps,
		pipeline.WithObserver(pipeline.ActivityRecorder{Log: log}),
		pipeline.WithLogger(logging.Discard()),
	)
	t.Cleanup(orch.Reset)
	s := NewServer(config.Config{DataInRoot: t.TempDir()}, orch, log, nil, logging.Discard())
	return &harness{steps: steps, orch: orch, log: log, h: s.Routes()}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, field, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (h *harness) submitAndWait(t *testing.T) pipeline.State {
	t.Helper()
	req := uploadRequest(t, "/analyses", "file", "paper.pdf", []byte("%PDF-1.4 fake"))
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-Username", "ada")
	rec := h.do(req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := h.orch.CurrentRun().Wait(ctx)
	require.NoError(t, err)
	return st
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCurrentIsIdleBeforeAnySubmission(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/analyses/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st pipeline.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, pipeline.StageIdle, st.Stage)
}

func TestSubmitRunsToCompletionAndRecordsActivity(t *testing.T) {
	h := newHarness(t)
	st := h.submitAndWait(t)
	assert.Equal(t, pipeline.StageCompleted, st.Stage)
	assert.Equal(t, []byte("%PDF-1.4 fake"), h.steps.gotData)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/activity?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []struct {
			UserID     string `json:"user_id"`
			Username   string `json:"username"`
			PaperTitle string `json:"paper_title"`
			ActionType string `json:"action_type"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "ada", body.Entries[0].Username)
	assert.Equal(t, "Attention Is All You Need", body.Entries[0].PaperTitle)

	rec = h.do(httptest.NewRequest(http.MethodDelete, "/activity", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	entries, err := h.log.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitRejectsMissingOrNonPDFFile(t *testing.T) {
	h := newHarness(t)

	rec := h.do(uploadRequest(t, "/analyses", "file", "notes.txt", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "SS-API-4001", errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "Only PDF files")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_id", "u1"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/analyses", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No PDF file")

	rec = h.do(httptest.NewRequest(http.MethodGet, "/analyses", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSubmitAcceptsAnyFileField(t *testing.T) {
	h := newHarness(t)
	rec := h.do(uploadRequest(t, "/analyses", "pdf", "paper.PDF", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestReportRequiresCompletedRun(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/report", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SS-API-4009", errorCode(t, rec))
}

func TestReportFormats(t *testing.T) {
	h := newHarness(t)
	h.submitAndWait(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var result analysis.AggregateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "A new architecture.", result.Summary.MainSummary)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/report?format=yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "main_summary: A new architecture.")

	rec = h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/report?format=docx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".docx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/report?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailedRunReportsErrorState(t *testing.T) {
	h := newHarness(t)
	h.steps.sumErr = analysis.NewStageError(analysis.KindSummarization, analysis.StageSummarization, "Summary generation failed: boom", nil)
	req := uploadRequest(t, "/analyses", "file", "paper.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusAccepted, h.do(req).Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := h.orch.CurrentRun().Wait(ctx)
	require.Error(t, err)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/analyses/current", nil))
	var st pipeline.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, pipeline.StageError, st.Stage)
	assert.Equal(t, "Summary generation failed: boom", st.Error)

	entries, err := h.log.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResetReturnsIdle(t *testing.T) {
	h := newHarness(t)
	h.submitAndWait(t)
	rec := h.do(httptest.NewRequest(http.MethodPost, "/analyses/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st pipeline.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, pipeline.StageIdle, st.Stage)
	assert.Nil(t, h.orch.CurrentRun())
}

func TestEventsStreamEndsWithTerminalState(t *testing.T) {
	h := newHarness(t)
	h.submitAndWait(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: completed\n"), body)
	assert.Contains(t, body, `"stage":"completed"`)
}

func TestEventsWithoutRunSendsIdle(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/analyses/current/events", nil))
	assert.Contains(t, rec.Body.String(), `"stage":"idle"`)
}

func TestDurableEndpointsNeedTemporal(t *testing.T) {
	h := newHarness(t)
	rec := h.do(uploadRequest(t, "/analyses/durable", "file", "paper.pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SS-API-5030", errorCode(t, rec))

	rec = h.do(httptest.NewRequest(http.MethodGet, "/analyses/durable/abc", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodOptions, "/analyses", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestToAPIErrorMapsStorageFailures(t *testing.T) {
	e := toAPIError(http.StatusInternalServerError, assert.AnError)
	assert.Equal(t, "SS-API-5000", e.Code)
	e = toAPIError(http.StatusInternalServerError, &netErr{"dial tcp 127.0.0.1:5432: connection refused"})
	assert.Equal(t, "SS-DB-5002", e.Code)
}

type netErr struct{ msg string }

func (e *netErr) Error() string { return e.msg }

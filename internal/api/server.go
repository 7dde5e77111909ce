package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"

	"scholarsync/internal/config"
	"scholarsync/internal/models"
	"scholarsync/internal/pipeline"
	"scholarsync/internal/report"
	"scholarsync/internal/util"
	"scholarsync/internal/workflows"
)

const maxUploadBytes = 64 << 20

var (
	errNoFile         = errors.New("no file provided")
	errNotPDF         = errors.New("file must be a pdf")
	errNotCompleted   = errors.New("no completed analysis")
	errDurableOff     = errors.New("durable runs are not configured")
	errMethodNotAllow = errors.New("method not allowed")
)

// WorkflowClient is the part of the Temporal client the server uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

type Server struct {
	cfg         config.Config
	orch        *pipeline.Orchestrator
	activityLog pipeline.ActivityLog
	temporal    WorkflowClient
	logger      *slog.Logger
}

// NewServer wires the HTTP API. temporal may be nil, which disables the
// durable endpoints.
func NewServer(cfg config.Config, orch *pipeline.Orchestrator, log pipeline.ActivityLog, temporal WorkflowClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, orch: orch, activityLog: log, temporal: temporal, logger: logger}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/analyses", s.handleSubmit)
	mux.HandleFunc("/analyses/current", s.handleCurrent)
	mux.HandleFunc("/analyses/current/events", s.handleEvents)
	mux.HandleFunc("/analyses/current/report", s.handleReport)
	mux.HandleFunc("/analyses/reset", s.handleReset)
	mux.HandleFunc("/analyses/durable", s.handleDurableSubmit)
	mux.HandleFunc("/analyses/durable/", s.handleDurableState)
	mux.HandleFunc("/activity", s.handleActivity)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	fh, err := uploadedPDF(w, r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	run := s.orch.Submit(r.Context(), pipeline.Document{
		Name:      filepath.Base(fh.Filename),
		Data:      data,
		Submitter: requestUser(r),
	})
	s.logger.Info("analysis submitted", "run_id", run.ID(), "filename", fh.Filename, "bytes", len(data), "sha256", util.SHA256Hex(data))
	writeJSON(w, http.StatusAccepted, map[string]any{"run_id": run.ID(), "stage": run.State().Stage})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	writeJSON(w, http.StatusOK, s.orch.Current())
}

// handleEvents streams the current run as server-sent events until it ends.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	run := s.orch.CurrentRun()
	if run == nil {
		writeEvent(w, pipeline.Event{Type: pipeline.EventProgress, State: pipeline.IdleState()})
		flusher.Flush()
		return
	}
	events, stop := run.Subscribe()
	defer stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, ev pipeline.Event) {
	b, _ := json.Marshal(ev.State)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, b)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	st := s.orch.Current()
	if st.Stage != pipeline.StageCompleted || st.Result == nil {
		writeErr(w, http.StatusConflict, errNotCompleted)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if format == report.FormatDOCX {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.docx"`, st.RunID))
	}
	if err := report.Encode(w, format, *st.Result); err != nil {
		s.logger.Error("render report", "run_id", st.RunID, "format", format, "error", err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	s.orch.Reset()
	writeJSON(w, http.StatusOK, s.orch.Current())
}

func (s *Server) handleDurableSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, errDurableOff)
		return
	}
	fh, err := uploadedPDF(w, r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	runID := uuid.NewString()
	path, err := saveUploadedFile(filepath.Join(s.cfg.DataInRoot, runID), fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       workflows.WorkflowID(runID),
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.AnalyzePaperWorkflow, workflows.AnalyzePaperInput{
		RunID:        runID,
		DocumentPath: path,
		Filename:     filepath.Base(fh.Filename),
		User:         requestUser(r),
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"run_id": runID, "workflow_id": we.GetID(), "temporal_run_id": we.GetRunID()})
}

func (s *Server) handleDurableState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
		return
	}
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, errDurableOff)
		return
	}
	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/analyses/durable/"), "/")
	if runID == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), workflows.WorkflowID(runID), "", workflows.QueryGetRunState)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	var st pipeline.State
	if err := resp.Get(&st); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := s.activityLog.List(r.Context(), limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	case http.MethodDelete:
		if err := s.activityLog.Clear(r.Context()); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	default:
		writeErr(w, http.StatusMethodNotAllowed, errMethodNotAllow)
	}
}

// requestUser reads the submitter from headers or form fields.
func requestUser(r *http.Request) models.User {
	id := firstNonEmpty(r.Header.Get("X-User-ID"), r.FormValue("user_id"))
	name := firstNonEmpty(r.Header.Get("X-Username"), r.FormValue("username"), id)
	if id == "" {
		return models.Anonymous
	}
	return models.User{ID: id, Username: name}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func uploadedPDF(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart: %w", err)
	}
	var fh *multipart.FileHeader
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		fh = files[0]
	} else if single, ok := firstSingleFile(r.MultipartForm.File); ok {
		fh = single
	}
	if fh == nil {
		return nil, errNoFile
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, errNotPDF
	}
	return fh, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return b, nil
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	if err := util.EnsureDir(dstDir); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()
	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstruct/docstruct/internal/config"
	"github.com/docstruct/docstruct/internal/model"
	"github.com/docstruct/docstruct/internal/outline"
	"github.com/docstruct/docstruct/internal/pipeline"
)

const testAPIKey = "test-api-key"

// thresholdScorer stands in for the trained boosters so handler tests
// run without model files on disk.
type thresholdScorer struct {
	level bool
}

func (s thresholdScorer) NOutputGroups() int { return 3 }

func (s thresholdScorer) Predict(fvals []float64, _ int, preds []float64) error {
	size, bold := fvals[0], fvals[1]
	if s.level {
		switch {
		case size >= 17:
			preds[0] = 1
		case size >= 14:
			preds[1] = 1
		default:
			preds[2] = 1
		}
		return nil
	}
	switch {
	case size >= 20:
		preds[0] = 1
	case size >= 12 && bold == 1:
		preds[1] = 1
	default:
		preds[2] = 1
	}
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	block, err := model.NewBlockClassifier(thresholdScorer{}, []model.BlockType{model.BlockTitle, model.BlockHeading, model.BlockOther})
	require.NoError(t, err)
	level, err := model.NewLevelClassifier(thresholdScorer{level: true}, []model.Level{model.H1, model.H2, model.H3})
	require.NoError(t, err)
	artifacts := &model.Artifacts{Block: block, Level: level}

	cfg := config.Config{
		APIKey:         testAPIKey,
		MaxUploadBytes: 1 << 20,
		WorkerCount:    2,
		MaxQueueSize:   8,
		DocTimeout:     5 * time.Second,
		JobTTL:         time.Hour,
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := pipeline.NewStats(time.Hour)
	orch := pipeline.NewOrchestrator(cfg, artifacts, stats, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, stats, log, cfg)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

const markdownDoc = `# Alpha

Introductory paragraph with plain body text.

## Beta

More body text under the second section.

### Gamma
`

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth_MissingAndWrongKey(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOutline_MarkdownUpload(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "doc.md", []byte(markdownDoc))
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got outline.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Alpha", got.Title)
	require.Len(t, got.Outline, 3)
	assert.Equal(t, model.H1, got.Outline[0].Level)
	assert.Equal(t, "Beta", got.Outline[1].Text)
	assert.Equal(t, model.H3, got.Outline[2].Level)
}

func TestOutline_UnsupportedExtension(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "doc.xyz", []byte("whatever"))
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestOutline_MissingFileField(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "wrongfield", "doc.md", []byte(markdownDoc))
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutline_BrokenDocumentStillReturnsRecord(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "broken.pdf", []byte("not a pdf at all"))
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got outline.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "", got.Title)
	assert.Empty(t, got.Outline)
}

func TestBatchOutline_JobLifecycle(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "files", "doc.md", []byte(markdownDoc))
	req := httptest.NewRequest(http.MethodPost, "/api/outline/batch", body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Jobs []struct {
			Filename string `json:"filename"`
			JobID    string `json:"job_id"`
			Error    string `json:"error"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	require.Empty(t, resp.Jobs[0].Error)
	jobID := resp.Jobs[0].JobID
	require.NotEmpty(t, jobID)

	var snap pipeline.JobSnapshot
	require.Eventually(t, func() bool {
		statusReq := httptest.NewRequest(http.MethodGet, "/api/outline/"+jobID+"/status", nil)
		statusReq.Header.Set("Authorization", "Bearer "+testAPIKey)
		statusRec := httptest.NewRecorder()
		srv.ServeHTTP(statusRec, statusReq)
		if statusRec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(statusRec.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Status == pipeline.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond, "job never completed: %+v", snap)

	require.NotNil(t, snap.Record)
	assert.Equal(t, "Alpha", snap.Record.Title)
	assert.Len(t, snap.Record.Outline, 3)
}

func TestOutlineStatus_UnknownJob(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/outline/nope/status", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats_ReportsPipelineLatency(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "doc.md", []byte(markdownDoc))
	req := httptest.NewRequest(http.MethodPost, "/api/outline", body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", contentType)
	srv.ServeHTTP(httptest.NewRecorder(), req)

	statsReq := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	statsReq.Header.Set("Authorization", "Bearer "+testAPIKey)
	statsRec := httptest.NewRecorder()
	srv.ServeHTTP(statsRec, statsReq)

	require.Equal(t, http.StatusOK, statsRec.Code)

	var resp struct {
		Pipeline struct {
			Count int `json:"count"`
		} `json:"pipeline"`
		QueueDepth int `json:"queue_depth"`
	}
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Pipeline.Count)
	assert.Zero(t, resp.QueueDepth)
}
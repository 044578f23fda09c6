package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/auth"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/execsrvc"
	httpsrv "github.com/programme-lv/competitions/http"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/memrepo"
	"github.com/programme-lv/competitions/migrsrvc"
	"github.com/programme-lv/competitions/results"
	decorator "github.com/programme-lv/competitions/srvccqs"
	"github.com/programme-lv/competitions/subm"
	"github.com/programme-lv/competitions/submsrvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtKey = []byte("http-test-key")

type env struct {
	server     *httpsrv.HttpServer
	handler    http.Handler
	repo       *memrepo.Repo
	dispatcher *execsrvc.RecordingDispatcher
	admin      uuid.UUID
	dataKey    uuid.UUID
}

func newEnv(t *testing.T) env {
	t.Helper()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	admin := uuid.New()
	repo := memrepo.New()
	repo.AddCompetition(comp.Competition{ID: 1, Title: "Olympiad", CreatorUUID: admin})
	repo.AddPhase(comp.Phase{ID: 1, CompetitionID: 1, Index: 0})
	repo.AddPhase(comp.Phase{ID: 2, CompetitionID: 1, Index: 1})
	repo.AddPhaseTask(1, comp.Task{ID: 1, Key: uuid.New()})
	repo.AddPhaseTask(2, comp.Task{ID: 1, Key: uuid.New()})
	repo.AddLeaderboard(leaderboard.Leaderboard{
		ID: 7, CompetitionID: 1, Title: "Main",
		Columns: []leaderboard.Column{{ID: 70, LeaderboardID: 7, Title: "points"}},
	})
	dataKey := uuid.New()
	repo.AddData(subm.Data{Key: dataKey, DataFile: "uploads/main.cpp"})

	dispatcher := execsrvc.NewRecordingDispatcher()
	subms := submsrvc.NewSubmSrvc(repo, repo, repo, dispatcher,
		submsrvc.PhaseTaskFanout{ListPhaseTasks: repo.ListPhaseTasks})
	migr := migrsrvc.NewMigrSrvc(repo, subms)
	exporter := results.NewExporter(repo, repo)

	server := httpsrv.NewHttpServer(subms, migr.MigrateToNextHandler(), exporter.ExportHandler(), httpsrv.Options{
		JwtKey:         jwtKey,
		AllowedOrigins: []string{"http://localhost:3000"},
		LogLevel:       slog.LevelError,
		Env:            "test",
	})
	return env{
		server:     server,
		handler:    server.Handler(),
		repo:       repo,
		dispatcher: dispatcher,
		admin:      admin,
		dataKey:    dataKey,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Code   string          `json:"code"`
}

func (e env) do(t *testing.T, method, path string, body any, user *uuid.UUID) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if user != nil {
		token, err := auth.GenerateJWT("alice", *user, jwtKey, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var out envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

type submResp struct {
	UUID     string `json:"uuid"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Secret   string `json:"secret"`
	Scores   []struct {
		ColumnID int64   `json:"column_id"`
		Score    float64 `json:"score"`
	} `json:"scores"`
}

func (e env) createSubm(t *testing.T, user uuid.UUID) subm.Subm {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/phases/1/submissions",
		map[string]any{"data": e.dataKey.String(), "description": "v1"}, &user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var s submResp
	require.NoError(t, json.Unmarshal(resp.Data, &s))
	assert.Empty(t, s.Secret)
	stored, err := e.repo.GetSubm(context.Background(), uuid.MustParse(s.UUID))
	require.NoError(t, err)
	return stored
}

func TestCreateSubmRequiresToken(t *testing.T) {
	e := newEnv(t)
	rec, resp := e.do(t, http.MethodPost, "/phases/1/submissions",
		map[string]any{"data": e.dataKey.String()}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", resp.Code)

	user := uuid.New()
	rec, resp = e.do(t, http.MethodPost, "/phases/1/submissions",
		map[string]any{"data": "not-a-uuid"}, &user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", resp.Code)
}

func TestSubmissionLifecycleOverHttp(t *testing.T) {
	e := newEnv(t)
	s := e.createSubm(t, uuid.New())
	require.Len(t, e.dispatcher.Requests(), 1)
	path := "/submissions/" + s.UUID.String()

	rec, resp := e.do(t, http.MethodPatch, path, map[string]any{"secret": "wrong", "status": "running"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_failed", resp.Code)

	rec, _ = e.do(t, http.MethodPatch, path, map[string]any{"secret": s.Secret.String(), "status": "running"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp = e.do(t, http.MethodPatch, path, map[string]any{"secret": s.Secret.String(), "status": "running"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", resp.Code)

	rec, _ = e.do(t, http.MethodPost, path+"/scores",
		map[string]any{"secret": s.Secret.String(), "column_id": 70, "score": 0}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp = e.do(t, http.MethodPost, path+"/scores",
		map[string]any{"secret": s.Secret.String(), "column_id": 70, "score": 5}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_score", resp.Code)

	rec, _ = e.do(t, http.MethodPatch, path, map[string]any{"secret": s.Secret.String(), "status": "finished"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = e.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view submResp
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "Finished", view.Status)
	assert.Equal(t, "main.cpp", view.Filename)
	require.Len(t, view.Scores, 1)
	assert.Equal(t, int64(70), view.Scores[0].ColumnID)
	assert.Equal(t, 0.0, view.Scores[0].Score)

	rec, resp = e.do(t, http.MethodGet, "/submissions/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", resp.Code)
}

func TestManualMigration(t *testing.T) {
	e := newEnv(t)
	e.createSubm(t, uuid.New())
	e.createSubm(t, uuid.New())

	stranger := uuid.New()
	rec, resp := e.do(t, http.MethodPost, "/phases/1/manually_migrate", nil, &stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_failed", resp.Code)

	rec, resp = e.do(t, http.MethodPost, "/phases/1/manually_migrate", nil, &e.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res migrsrvc.MigrationResult
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, migrsrvc.MigrationResult{Created: 2, Dispatched: 2}, res)

	migrated, err := e.repo.ListPhaseSubms(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, migrated, 2)
}

func TestResultsEndpoints(t *testing.T) {
	e := newEnv(t)

	rec, _ := e.do(t, http.MethodGet, "/competitions/1/results.json?id=7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"Main(7)":{}}`, rec.Body.String())

	rec, _ = e.do(t, http.MethodGet, "/competitions/1/results.csv?title=Main", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "participant,points(70)\n", rec.Body.String())

	rec, _ = e.do(t, http.MethodGet, "/competitions/1/results.zip", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-zip-compressed", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Olympiad.zip", rec.Header().Get("Content-Disposition"))

	rec, resp := e.do(t, http.MethodGet, "/competitions/1/results.json?title=Nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", resp.Code)

	rec, resp = e.do(t, http.MethodGet, "/competitions/1/results.json?id=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", resp.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.createSubm(t, uuid.New())

	rec, _ := e.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "subm_dispatches_total")
}

func TestServeStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- e.server.Serve(ctx, "127.0.0.1:0")
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSecretIsCheckedBeforeFields(t *testing.T) {
	e := newEnv(t)
	s := e.createSubm(t, uuid.New())
	path := "/submissions/" + s.UUID.String()

	rec, resp := e.do(t, http.MethodPatch, path, map[string]any{"secret": "wrong"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_failed", resp.Code)

	rec, resp = e.do(t, http.MethodPatch, path, map[string]any{"status": "running"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_failed", resp.Code)

	rec, resp = e.do(t, http.MethodPatch, path, map[string]any{"secret": s.Secret.String()}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", resp.Code)

	rec, resp = e.do(t, http.MethodPost, path+"/scores", map[string]any{"secret": "wrong"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_failed", resp.Code)

	rec, resp = e.do(t, http.MethodPost, path+"/scores", map[string]any{"score": 1}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_failed", resp.Code)

	rec, resp = e.do(t, http.MethodPost, path+"/scores", map[string]any{"secret": s.Secret.String(), "score": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", resp.Code)

	stored, err := e.repo.GetSubm(context.Background(), s.UUID)
	require.NoError(t, err)
	assert.Equal(t, subm.StatusSubmitting, stored.Status)
}

func TestZipFilenameIsWrittenVerbatim(t *testing.T) {
	e := newEnv(t)
	e.repo.AddCompetition(comp.Competition{ID: 2, Title: "Spring Cup", CreatorUUID: e.admin})
	e.repo.AddLeaderboard(leaderboard.Leaderboard{
		ID: 8, CompetitionID: 2, Title: "Main",
		Columns: []leaderboard.Column{{ID: 80, LeaderboardID: 8, Title: "points"}},
	})

	rec, _ := e.do(t, http.MethodGet, "/competitions/2/results.zip", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=Spring Cup.zip", rec.Header().Get("Content-Disposition"))
}

func TestExportSurvivesCallerCancel(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := memrepo.New()
	subms := submsrvc.NewSubmSrvc(repo, repo, repo, execsrvc.NewRecordingDispatcher(),
		submsrvc.PhaseTaskFanout{ListPhaseTasks: repo.ListPhaseTasks})
	migr := migrsrvc.NewMigrSrvc(repo, subms)

	export := decorator.QueryHandlerFunc[results.ExportQuery, results.Export](
		func(ctx context.Context, q results.ExportQuery) (results.Export, error) {
			if err := ctx.Err(); err != nil {
				return results.Export{}, err
			}
			return results.Export{ContentType: "application/json", Body: []byte(`{}`)}, nil
		})
	server := httpsrv.NewHttpServer(subms, migr.MigrateToNextHandler(), export, httpsrv.Options{
		JwtKey:   jwtKey,
		LogLevel: slog.LevelError,
		Env:      "test",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/competitions/1/results.json", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{}`, rec.Body.String())
}

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KaramelBytes/folio-cli/internal/logging"
	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/KaramelBytes/folio-cli/internal/publish"
	"github.com/KaramelBytes/folio-cli/internal/server"
	"github.com/KaramelBytes/folio-cli/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type harness struct {
	router *gin.Engine
	repo   *project.Repository
	slot   *storage.MemorySlot
	calls  *int32
}

func newHarness(t *testing.T, token string, github http.HandlerFunc) *harness {
	t.Helper()
	var calls int32
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		github(w, r)
	}))
	t.Cleanup(gh.Close)

	slot := storage.NewMemorySlot()
	repo, err := project.Open(context.Background(), storage.NewJSONStore(slot, nil))
	require.NoError(t, err)
	pub := publish.New(gh.URL, 2*time.Second, nil)
	opts := server.Options{Defaults: publish.Target{Owner: "me", Repo: "site", Branch: "main"}, Token: token}
	return &harness{
		router: server.NewRouter(repo, pub, opts, logging.Discard()),
		repo:   repo,
		slot:   slot,
		calls:  &calls,
	}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func multipartCreate(t *testing.T, title, desc, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", desc))
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/projects", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func notFoundGitHub(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		return
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.WriteHeader(http.StatusCreated)
	path := strings.TrimPrefix(r.URL.Path, "/repos/me/site/contents/")
	_ = json.NewEncoder(w).Encode(map[string]any{"content": map[string]any{"path": path, "sha": "s1"}})
}

func TestHealth(t *testing.T) {
	h := newHarness(t, "", notFoundGitHub)
	w := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestCreateListAndDownload(t *testing.T) {
	h := newHarness(t, "", notFoundGitHub)

	w := h.do(multipartCreate(t, "Demo", "d", "", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(multipartCreate(t, "Slides", "", "talk.txt", []byte("hello")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created project.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "talk.txt", created.Filename)

	w = h.do(httptest.NewRequest(http.MethodGet, "/projects", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list server.ProjectsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Slides", list.Projects[0].Title)
	assert.Equal(t, "Demo", list.Projects[1].Title)
	assert.Empty(t, list.Projects[1].FileData)

	w = h.do(httptest.NewRequest(http.MethodGet, "/projects/"+created.ID+"/file", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "talk.txt", downloadName(t, w))

	w = h.do(httptest.NewRequest(http.MethodGet, "/projects/"+list.Projects[1].ID+"/file", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func downloadName(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	return params["filename"]
}

func TestDownloadKeepsNonASCIIFilename(t *testing.T) {
	h := newHarness(t, "", notFoundGitHub)
	w := h.do(multipartCreate(t, "作品集", "", "作品集.pdf", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created project.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = h.do(httptest.NewRequest(http.MethodGet, "/projects/"+created.ID+"/file", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Header().Get("Content-Disposition"), `\u`)
	assert.Equal(t, "作品集.pdf", downloadName(t, w))
}

func TestCreateEmptyTitle(t *testing.T) {
	h := newHarness(t, "", notFoundGitHub)
	w := h.do(multipartCreate(t, "", "d", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.repo.List())
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, "", notFoundGitHub)
	p, err := h.repo.Create(context.Background(), project.NewProject{Title: "x"})
	require.NoError(t, err)
	before, _ := h.slot.Read(context.Background())

	w := h.do(httptest.NewRequest(http.MethodDelete, "/projects/"+p.ID, nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	after, _ := h.slot.Read(context.Background())
	assert.Equal(t, before, after)
	assert.Len(t, h.repo.List(), 1)

	w = h.do(httptest.NewRequest(http.MethodDelete, "/projects/"+p.ID+"?confirm=true", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, h.repo.List())
}

func TestPublishWithoutTokenMakesNoRemoteCall(t *testing.T) {
	h := newHarness(t, "", notFoundGitHub)
	p, err := h.repo.Create(context.Background(), project.NewProject{Title: "x"})
	require.NoError(t, err)

	w := h.do(httptest.NewRequest(http.MethodPost, "/projects/"+p.ID+"/publish", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(h.calls))
}

func TestPublishUsesRequestToken(t *testing.T) {
	var auth atomic.Value
	h := newHarness(t, "", func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		notFoundGitHub(w, r)
	})
	p, err := h.repo.Create(context.Background(), project.NewProject{Title: "Demo"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/projects/"+p.ID+"/publish", strings.NewReader(`{"token":"tok"}`))
	req.Header.Set("Content-Type", "application/json")
	w := h.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "_projects/"+p.ID+"_Demo.data", body["path"])
	assert.Equal(t, true, body["created"])
	assert.Equal(t, "token tok", auth.Load())
	assert.Equal(t, int32(2), atomic.LoadInt32(h.calls))
}

func TestPublishConflictMapsTo409(t *testing.T) {
	h := newHarness(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"sha wasn't supplied"}`))
	})
	p, err := h.repo.Create(context.Background(), project.NewProject{Title: "Demo"})
	require.NoError(t, err)

	w := h.do(httptest.NewRequest(http.MethodPost, "/projects/"+p.ID+"/publish", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "sha wasn't supplied")
}

func TestPublishUnknownProject(t *testing.T) {
	h := newHarness(t, "tok", notFoundGitHub)
	w := h.do(httptest.NewRequest(http.MethodPost, "/projects/404/publish", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/crawler"
	"github.com/ikhlasbhojani/learnme/internal/fetcher"
	"github.com/ikhlasbhojani/learnme/internal/service"
	"github.com/ikhlasbhojani/learnme/internal/storage"
	"github.com/ikhlasbhojani/learnme/internal/titles"
	"github.com/ikhlasbhojani/learnme/internal/validator"
)

func docsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><a href="/guide/intro">Introduction</a></body></html>`)
	})
	mux.HandleFunc("/guide/intro", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Intro</title></head><body><main><p>Intro body text for the guide page.</p></main></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	f := fetcher.New(client, 10*time.Second)
	eng := crawler.New(
		f,
		titles.New(client),
		validator.New(client, validator.NewCache(validator.MaxGlobalCacheSize)),
		zap.NewNop(),
	)
	store, err := storage.New(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ext := service.New(service.Options{
		Engine:  eng,
		Fetcher: f,
		Store:   store,
		Log:     zap.NewNop(),
	})
	return NewServer(":0", ext, zap.NewNop(), false)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, srv *Server, method, path, body, userID string) (int, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestExtractTopicsEndpoint(t *testing.T) {
	docs := docsServer(t)
	srv := newTestServer(t)

	body := fmt.Sprintf(`{"url":%q,"maxDepth":1,"mode":"http"}`, docs.URL+"/")
	code, env := doJSON(t, srv, http.MethodPost, "/api/content/extract-topics", body, "user-1")

	if code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", code, env)
	}
	var data struct {
		Topics []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"topics"`
		ExtractionMode string `json:"extractionMode"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Topics) != 1 || data.Topics[0].ID != "guide-intro" {
		t.Errorf("topics = %+v", data.Topics)
	}
	if data.ExtractionMode != "http" {
		t.Errorf("extractionMode = %q", data.ExtractionMode)
	}

	// The run lands in extraction history for the same user.
	code, env = doJSON(t, srv, http.MethodGet, "/api/extractions", "", "user-1")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("list status = %d, env = %+v", code, env)
	}
	var runs []struct {
		MainURL string `json:"mainUrl"`
	}
	if err := json.Unmarshal(env.Data, &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].MainURL != docs.URL+"/" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestExtractTopicsRejectsBadURL(t *testing.T) {
	srv := newTestServer(t)
	code, env := doJSON(t, srv, http.MethodPost, "/api/content/extract-topics", `{"url":"notaurl"}`, "")
	if code != http.StatusBadRequest || env.Success {
		t.Errorf("status = %d, env = %+v, want 400", code, env)
	}
	if env.Error.Code != "invalid_url" {
		t.Errorf("error code = %q, want invalid_url", env.Error.Code)
	}
}

func TestExtractTopicsRejectsMissingBody(t *testing.T) {
	srv := newTestServer(t)
	code, env := doJSON(t, srv, http.MethodPost, "/api/content/extract-topics", `{}`, "")
	if code != http.StatusBadRequest || env.Success {
		t.Errorf("status = %d, env = %+v, want 400", code, env)
	}
}

func TestExtractTopicsUpstreamFailure(t *testing.T) {
	srv := newTestServer(t)
	code, env := doJSON(t, srv, http.MethodPost, "/api/content/extract-topics",
		`{"url":"http://127.0.0.1:1/","mode":"http"}`, "")
	if code != http.StatusBadGateway || env.Success {
		t.Errorf("status = %d, env = %+v, want 502", code, env)
	}
	if env.Error.Code != "extraction_failed" {
		t.Errorf("error code = %q", env.Error.Code)
	}
}

func TestExtractContentEndpoint(t *testing.T) {
	docs := docsServer(t)
	srv := newTestServer(t)

	body := fmt.Sprintf(`{"url":%q}`, docs.URL+"/guide/intro")
	code, env := doJSON(t, srv, http.MethodPost, "/api/content/extract", body, "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", code, env)
	}
	var data struct {
		Content string `json:"content"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !strings.Contains(data.Content, "Intro body text") {
		t.Errorf("content = %q", data.Content)
	}
	if data.Source != docs.URL+"/guide/intro" {
		t.Errorf("source = %q", data.Source)
	}
}

package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/dto"
	"github.com/aretw0/boardgen/pkg/adapters/memory"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/observability"
	"github.com/aretw0/boardgen/pkg/ports"
	"github.com/aretw0/boardgen/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...boardgen.Option) (http.Handler, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(), session.WithBoardOptions(opts...))
	t.Cleanup(mgr.Wait)
	return NewHandler(mgr), mgr
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) dto.BoardView {
	t.Helper()
	var view dto.BoardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestBoardLifecycle(t *testing.T) {
	h, mgr := newTestHandler(t)

	w := do(t, h, "POST", "/boards", dto.CreateBoardRequest{ID: "b1", Topic: "Rivers", Sections: 2, Cells: 3, Scale: 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decodeView(t, w)
	assert.Equal(t, "b1", view.ID)
	assert.Equal(t, 300, view.Document.Sections[0].Cells[2].PointValue)

	w = do(t, h, "POST", "/boards", dto.CreateBoardRequest{ID: "b1", Sections: 1, Cells: 1, Scale: 100})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "GET", "/boards/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"boards":["b1"]}`, w.Body.String())

	w = do(t, h, "POST", "/boards/b1/generate", dto.GenerateRequest{Kind: "board"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	mgr.Wait()

	w = do(t, h, "GET", "/boards/b1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView(t, w)
	assert.Equal(t, domain.StateComplete, view.Status.State)
	assert.Equal(t, "Rivers 1", view.Document.Sections[0].Title)

	w = do(t, h, "POST", "/boards/b1/rescale", dto.RescaleRequest{Scale: 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 150, decodeView(t, w).Document.Sections[1].Cells[2].PointValue)

	w = do(t, h, "DELETE", "/boards/b1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "GET", "/boards/b1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditCellAndTitle(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/boards", dto.CreateBoardRequest{ID: "b1", Sections: 1, Cells: 2, Scale: 100})

	w := do(t, h, "PATCH", "/boards/b1/sections/0/cells/1", map[string]any{
		"prompt_text": "Longest river?", "revealed_text": "Nile", "answered": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cell := decodeView(t, w).Document.Sections[0].Cells[1]
	assert.Equal(t, "Nile", cell.RevealedText)
	assert.True(t, cell.Answered)

	w = do(t, h, "PUT", "/boards/b1/sections/0/title", dto.TitleRequest{Title: "Rivers"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rivers", decodeView(t, w).Document.Sections[0].Title)

	w = do(t, h, "PATCH", "/boards/b1/sections/0/cells/9", map[string]any{"voided": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PATCH", "/boards/b1/sections/x/cells/0", map[string]any{"voided": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/boards/b1/rescale", dto.RescaleRequest{Scale: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWritesRejectedWhileGenerating(t *testing.T) {
	release := make(chan struct{})
	blocking := ports.ProviderFunc(func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		<-release
		return `{"sections":[{"title":"Late","cells":[{"prompt_text":"q","revealed_text":"a"}]}]}`, nil
	})
	h, mgr := newTestHandler(t, boardgen.WithProvider(blocking))
	do(t, h, "POST", "/boards", dto.CreateBoardRequest{ID: "b1", Sections: 1, Cells: 1, Scale: 100})

	w := do(t, h, "POST", "/boards/b1/generate", dto.GenerateRequest{Kind: "board"})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = do(t, h, "GET", "/boards/b1/status", nil)
	assert.Contains(t, w.Body.String(), `"state":"generating"`)

	w = do(t, h, "POST", "/boards/b1/rescale", dto.RescaleRequest{Scale: 50})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "POST", "/boards/b1/cancel", nil)
	assert.JSONEq(t, `{"canceled":true}`, w.Body.String())

	close(release)
	mgr.Wait()

	w = do(t, h, "GET", "/boards/b1", nil)
	view := decodeView(t, w)
	assert.Equal(t, domain.StateCanceled, view.Status.State)
	assert.Equal(t, "Section 1", view.Document.Sections[0].Title)
}

func TestSubscribeEvents_Board(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	handler := NewHandler(mgr)
	srv := httptest.NewServer(handler)
	defer srv.Close()
	do(t, handler, "POST", "/boards", dto.CreateBoardRequest{ID: "b1", Sections: 1, Cells: 1, Scale: 100})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/boards/b1/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	require.Equal(t, "event: ping", <-lines)

	w := do(t, handler, "PUT", "/boards/b1/sections/0/title", dto.TitleRequest{Title: "Lakes"})
	require.Equal(t, http.StatusOK, w.Code)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-lines:
			if strings.HasPrefix(line, "data: {") {
				assert.Contains(t, line, `"titles":{"0":"Lakes"}`)
				return
			}
		case <-deadline:
			t.Fatal("Expected diff in SSE output")
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	reporter, err := observability.NewPrometheusReporter(reg)
	require.NoError(t, err)
	mgr := session.NewManager(memory.NewStore(), session.WithBoardOptions(boardgen.WithReporter(reporter)))
	h := NewHandler(mgr, WithGatherer(reg))

	do(t, h, "POST", "/boards", dto.CreateBoardRequest{ID: "b1", Sections: 1, Cells: 1, Scale: 100})
	do(t, h, "POST", "/boards/b1/generate", dto.GenerateRequest{Kind: "board"})
	mgr.Wait()

	w := do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `boardgen_generations_total{outcome="applied",scope="board"} 1`)
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, "GET", "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	assert.Contains(t, w.Body.String(), strings.TrimSpace(boardgen.Version))
}

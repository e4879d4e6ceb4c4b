package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/catalog"
	"github.com/vjranagit/curvecatalog/pkg/types"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cat, err := catalog.Open(&catalog.Config{
		Path:             t.TempDir(),
		CompressionLevel: 1,
		EnableJournal:    false,
	})
	if err != nil {
		t.Fatalf("Failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	return NewServer(":0", cat, catalog.NewDocumentCache(16, time.Minute))
}

func postJSON(t *testing.T, handler http.HandlerFunc, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func seedCatalog(t *testing.T, s *Server) {
	t.Helper()

	pl := &types.Pipeline{
		ID:             "yield_curve",
		Name:           "US Treasury Yield Curve",
		LeadDeveloper:  "J. Doe",
		LastCodeUpdate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		DataframeIDs:   []string{"yield_curve:fed_yield_curve"},
	}
	if w := postJSON(t, s.handlePipelines, "/api/v1/pipelines", pl); w.Code != http.StatusOK {
		t.Fatalf("Pipeline put returned %d: %s", w.Code, w.Body.String())
	}

	df := &types.Dataframe{
		ID:          "yield_curve:fed_yield_curve",
		Name:        "Fed Yield Curve",
		TopicTags:   []string{"treasury"},
		PipelineIDs: []string{"yield_curve"},
	}
	if w := postJSON(t, s.handleDataframes, "/api/v1/dataframes", df); w.Code != http.StatusOK {
		t.Fatalf("Dataframe put returned %d: %s", w.Code, w.Body.String())
	}
}

func TestDataframePutAndGet(t *testing.T) {
	s := testServer(t)
	seedCatalog(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataframes?id=yield_curve:fed_yield_curve", nil)
	w := httptest.NewRecorder()
	s.handleDataframes(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Get returned %d: %s", w.Code, w.Body.String())
	}
	var df types.Dataframe
	if err := json.NewDecoder(w.Body).Decode(&df); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if df.Name != "Fed Yield Curve" {
		t.Errorf("Name = %q, want Fed Yield Curve", df.Name)
	}
}

func TestDataframeNotFound(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataframes?id=missing:df", nil)
	w := httptest.NewRecorder()
	s.handleDataframes(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	s := testServer(t)
	seedCatalog(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/validate", nil)
	w := httptest.NewRecorder()
	s.handleValidate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Validate returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Valid  bool          `json:"valid"`
		Issues []types.Issue `json:"issues"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Valid {
		t.Errorf("Expected valid catalog, got issues %+v", resp.Issues)
	}
}

func TestValidateReportsDanglingLink(t *testing.T) {
	s := testServer(t)

	df := &types.Dataframe{
		ID:          "yield_curve:orphan",
		Name:        "Orphan",
		PipelineIDs: []string{"missing_pipeline"},
	}
	if w := postJSON(t, s.handleDataframes, "/api/v1/dataframes", df); w.Code != http.StatusOK {
		t.Fatalf("Put returned %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/validate", nil)
	w := httptest.NewRecorder()
	s.handleValidate(w, req)

	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Valid {
		t.Error("Expected dangling pipeline link to be reported")
	}
}

func TestRenderDataframe(t *testing.T) {
	s := testServer(t)
	seedCatalog(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/render?kind=dataframe&id=yield_curve:fed_yield_curve", nil)
	w := httptest.NewRecorder()
	s.handleRender(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Render returned %d: %s", w.Code, w.Body.String())
	}
	page := w.Body.String()
	if !strings.HasPrefix(page, "# Dataframe: yield_curve:fed_yield_curve - Fed Yield Curve") {
		t.Errorf("Unexpected page header:\n%s", page)
	}
	// The linked pipeline's manifest is embedded on the dataframe page.
	if !strings.Contains(page, "| Pipeline ID | yield_curve |") {
		t.Error("Missing embedded pipeline manifest")
	}

	// Same request again is served from the document cache.
	w2 := httptest.NewRecorder()
	s.handleRender(w2, httptest.NewRequest(http.MethodGet, "/api/v1/render?kind=dataframe&id=yield_curve:fed_yield_curve", nil))
	if w2.Body.String() != page {
		t.Error("Cached render differs from first render")
	}
}

func TestRenderMissingID(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/render", nil)
	w := httptest.NewRecorder()
	s.handleRender(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestSeriesWriteAndRead(t *testing.T) {
	s := testServer(t)
	seedCatalog(t, s)

	dates := make([]time.Time, 5)
	values := make([]float64, 5)
	for i := range dates {
		dates[i] = time.Date(2024, 6, 24+i, 0, 0, 0, 0, time.UTC)
		values[i] = 4.5 + float64(i)*0.01
	}

	write := &types.SeriesWriteRequest{
		DataframeID: "yield_curve:fed_yield_curve",
		Series: []types.Series{
			{Column: "SVENY10", Dates: dates, Values: values},
		},
	}
	if w := postJSON(t, s.handleSeriesWrite, "/api/v1/series/write", write); w.Code != http.StatusOK {
		t.Fatalf("Write returned %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/series/read?dataframe_id=yield_curve:fed_yield_curve&column=SVENY10&start=2024-06-25&end=2024-06-27", nil)
	w := httptest.NewRecorder()
	s.handleSeriesRead(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Read returned %d: %s", w.Code, w.Body.String())
	}
	var result types.SeriesReadResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result.Series.Values) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(result.Series.Values))
	}
	if result.Series.Values[0] != 4.51 {
		t.Errorf("First value = %g, want 4.51", result.Series.Values[0])
	}
}

func TestSeriesReadMissingParams(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/read?column=SVENY10", nil)
	w := httptest.NewRecorder()
	s.handleSeriesRead(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestGlimpseEndpoint(t *testing.T) {
	s := testServer(t)

	csvBody := "Date,SVENY01\n2024-06-27,4.71\n2024-06-28,4.74\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/glimpse", strings.NewReader(csvBody))
	w := httptest.NewRecorder()
	s.handleGlimpse(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Glimpse returned %d: %s", w.Code, w.Body.String())
	}
	var g types.Glimpse
	if err := json.NewDecoder(w.Body).Decode(&g); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if g.Rows != 2 || g.Columns != 2 {
		t.Errorf("Got %d rows and %d columns, want 2 and 2", g.Rows, g.Columns)
	}
	if g.Fields[0].Type != types.TypeDatetime {
		t.Errorf("Date column type = %s, want datetime", g.Fields[0].Type)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/dataframes", nil)
	w := httptest.NewRecorder()
	s.handleDataframes(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

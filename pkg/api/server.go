package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/catalog"
	"github.com/vjranagit/curvecatalog/pkg/docs"
	"github.com/vjranagit/curvecatalog/pkg/glimpse"
	"github.com/vjranagit/curvecatalog/pkg/types"
)

// Server implements the HTTP API server
type Server struct {
	catalog catalog.Catalog
	cache   *catalog.DocumentCache
	addr    string
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(addr string, cat catalog.Catalog, cache *catalog.DocumentCache) *Server {
	return &Server{
		catalog: cat,
		cache:   cache,
		addr:    addr,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register handlers
	mux.HandleFunc("/api/v1/dataframes", s.handleDataframes)
	mux.HandleFunc("/api/v1/pipelines", s.handlePipelines)
	mux.HandleFunc("/api/v1/series/write", s.handleSeriesWrite)
	mux.HandleFunc("/api/v1/series/read", s.handleSeriesRead)
	mux.HandleFunc("/api/v1/validate", s.handleValidate)
	mux.HandleFunc("/api/v1/render", s.handleRender)
	mux.HandleFunc("/api/v1/glimpse", s.handleGlimpse)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleDataframes handles dataframe manifest registration and lookup
func (s *Server) handleDataframes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var df types.Dataframe
		if err := json.NewDecoder(r.Body).Decode(&df); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
			return
		}

		if err := s.catalog.PutDataframe(r.Context(), &df); err != nil {
			http.Error(w, fmt.Sprintf("Put failed: %v", err), http.StatusInternalServerError)
			return
		}

		// Rendered pages embed linked records, so any put invalidates all.
		if s.cache != nil {
			s.cache.Clear()
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "success",
		})

	case http.MethodGet:
		id := r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")

		if id == "" {
			list, err := s.catalog.ListDataframes(r.Context())
			if err != nil {
				http.Error(w, fmt.Sprintf("List failed: %v", err), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(list)
			return
		}

		df, err := s.catalog.GetDataframe(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Dataframe %q not found", id), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Get failed: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(df)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePipelines handles pipeline manifest registration and lookup
func (s *Server) handlePipelines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var pl types.Pipeline
		if err := json.NewDecoder(r.Body).Decode(&pl); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
			return
		}

		if err := s.catalog.PutPipeline(r.Context(), &pl); err != nil {
			http.Error(w, fmt.Sprintf("Put failed: %v", err), http.StatusInternalServerError)
			return
		}

		if s.cache != nil {
			s.cache.Clear()
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "success",
		})

	case http.MethodGet:
		id := r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")

		if id == "" {
			list, err := s.catalog.ListPipelines(r.Context())
			if err != nil {
				http.Error(w, fmt.Sprintf("List failed: %v", err), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(list)
			return
		}

		pl, err := s.catalog.GetPipeline(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Pipeline %q not found", id), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Get failed: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(pl)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSeriesWrite handles numeric column writes
func (s *Server) handleSeriesWrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req types.SeriesWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.catalog.WriteSeries(r.Context(), &req); err != nil {
		http.Error(w, fmt.Sprintf("Write failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}

// handleSeriesRead handles numeric column reads
func (s *Server) handleSeriesRead(w http.ResponseWriter, r *http.Request) {
	dataframeID := r.URL.Query().Get("dataframe_id")
	column := r.URL.Query().Get("column")
	if dataframeID == "" || column == "" {
		http.Error(w, "Missing dataframe_id or column parameter", http.StatusBadRequest)
		return
	}

	req := &types.SeriesReadRequest{
		DataframeID: dataframeID,
		Column:      column,
	}

	if startStr := r.URL.Query().Get("start"); startStr != "" {
		start, err := time.Parse(docs.DateLayout, startStr)
		if err != nil {
			http.Error(w, "Invalid start date", http.StatusBadRequest)
			return
		}
		req.StartDate = start
	}

	if endStr := r.URL.Query().Get("end"); endStr != "" {
		end, err := time.Parse(docs.DateLayout, endStr)
		if err != nil {
			http.Error(w, "Invalid end date", http.StatusBadRequest)
			return
		}
		req.EndDate = end
	}

	result, err := s.catalog.ReadSeries(r.Context(), req)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, fmt.Sprintf("Series %s/%s not found", dataframeID, column), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Read failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleValidate runs the reference-graph checks
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	issues, err := s.catalog.Validate(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Validate failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

// handleRender renders a catalog page as Markdown
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}
	if kind == "" {
		kind = "dataframe"
	}

	if s.cache != nil {
		if page, ok := s.cache.Get(kind, id); ok {
			w.Header().Set("Content-Type", "text/markdown")
			w.Write(page)
			return
		}
	}

	var page []byte
	switch kind {
	case "dataframe":
		df, err := s.catalog.GetDataframe(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Dataframe %q not found", id), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Get failed: %v", err), http.StatusInternalServerError)
			return
		}

		var pl *types.Pipeline
		if len(df.PipelineIDs) > 0 {
			pl, err = s.catalog.GetPipeline(r.Context(), df.PipelineIDs[0])
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, fmt.Sprintf("Get failed: %v", err), http.StatusInternalServerError)
				return
			}
		}
		page = docs.RenderDataframePage(df, pl)

	case "pipeline":
		pl, err := s.catalog.GetPipeline(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Pipeline %q not found", id), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Get failed: %v", err), http.StatusInternalServerError)
			return
		}
		page = docs.RenderPipelinePage(pl)

	default:
		http.Error(w, fmt.Sprintf("Unknown kind %q", kind), http.StatusBadRequest)
		return
	}

	if s.cache != nil {
		s.cache.Put(kind, id, page)
	}

	w.Header().Set("Content-Type", "text/markdown")
	w.Write(page)
}

// handleGlimpse builds a glimpse from a CSV request body
func (s *Server) handleGlimpse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	g, err := glimpse.FromCSV(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Glimpse failed: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(g)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

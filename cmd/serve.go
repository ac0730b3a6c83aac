package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/pipeline"
	"github.com/dealscope/dealscope/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommendation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		o := buildOrchestrator(st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(o, st),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the API routes over the orchestrator and store.
func newRouter(o *pipeline.Orchestrator, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommend", handleRecommend(o))
		r.Post("/search", handleSearch(o))
		r.Post("/price", handlePrice(o))
		r.Post("/review", handleReview(o))
		r.Post("/score", handleScore(o))
		r.Get("/runs", handleListRuns(st))
		r.Get("/runs/{id}", handleGetRun(st))
	})

	return r
}

// handleRecommend runs the full pipeline. The response is always 200
// with an explicit success flag; only a malformed body is a 400.
func handleRecommend(o *pipeline.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query model.PipelineQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, o.Run(r.Context(), query))
	}
}

func handleSearch(o *pipeline.Orchestrator) http.HandlerFunc {
	type request struct {
		SearchTerm string              `json:"search_term"`
		MaxResults int                 `json:"max_results"`
		Sources    []string            `json:"sources"`
		Filters    model.SearchFilters `json:"filters"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		result, err := o.SearchOnly(r.Context(), req.SearchTerm, req.MaxResults, req.Sources, req.Filters)
		if err != nil {
			writeStageError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handlePrice(o *pipeline.Orchestrator) http.HandlerFunc {
	type request struct {
		SearchTerm string `json:"search_term"`
		MaxResults int    `json:"max_results"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		report, err := o.PriceOnly(r.Context(), req.SearchTerm, req.MaxResults)
		if err != nil {
			writeStageError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func handleReview(o *pipeline.Orchestrator) http.HandlerFunc {
	type request struct {
		Reviews []model.Review `json:"reviews"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		analysis, err := o.ReviewOnly(r.Context(), req.Reviews)
		if err != nil {
			writeStageError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

func handleScore(o *pipeline.Orchestrator) http.HandlerFunc {
	type request struct {
		Products    []model.Product                   `json:"products"`
		PriceData   map[string]model.ProductPriceData `json:"price_data"`
		ReviewData  map[string]*model.ReviewAnalysis  `json:"review_data"`
		Preferences model.Preferences                 `json:"preferences"`
	}
	type response struct {
		Recommendations []model.Recommendation `json:"recommendations"`
		Summary         model.Summary          `json:"summary"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		recs, summary, err := o.ScoreOnly(req.Products, req.PriceData, req.ReviewData, req.Preferences)
		if err != nil {
			writeStageError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{recs, summary})
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.RunFilter{
			Status:     model.RunStatus(q.Get("status")),
			SearchTerm: q.Get("term"),
		}
		if limit := q.Get("limit"); limit != "" {
			fmt.Sscanf(limit, "%d", &filter.Limit) //nolint:errcheck
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// writeStageError maps pipeline error kinds onto HTTP statuses.
func writeStageError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch pipeline.KindOf(err) {
	case pipeline.KindValidation:
		status = http.StatusBadRequest
	case pipeline.KindNoData:
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

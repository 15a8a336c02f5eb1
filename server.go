package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const (
	pathsRoute = "/api/generate-learning-paths"
	mapRoute   = "/api/generate-map"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

type generateHandler struct {
	gen PathGenerator
	log *slog.Logger
}

// newRouter mounts the two generation routes behind a PathGenerator.
func newRouter(gen PathGenerator, log *slog.Logger) chi.Router {
	h := &generateHandler{gen: gen, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post(pathsRoute, h.serve(GenerationPaths))
	r.Post(mapRoute, h.serve(GenerationMap))
	return r
}

func (h *generateHandler) serve(mode GenerationMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerationRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
			return
		}
		req.Mode = mode
		if err := req.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}

		res, err := h.gen.Generate(r.Context(), req)
		switch {
		case err != nil:
		case res == nil:
			err = ErrGenerationFailed
		default:
			err = res.Validate()
		}
		if err != nil {
			h.log.Error("generation failed",
				slog.String("mode", mode.String()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(generationFailureMessage(mode)))
			return
		}
		writeJSON(w, http.StatusOK, res.Payload())
	}
}

// runServer serves the generation API until ctx is cancelled or a signal
// arrives, then shuts down gracefully.
func runServer(ctx context.Context, port int, gen PathGenerator, log *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newRouter(gen, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting HTTP server", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			log.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"telanews/internal/config"
	"telanews/internal/metrics"
	"telanews/internal/pipeline"
	"telanews/internal/render"
)

// startControlServer exposes health and metrics, start/stop control of
// the pollers, and the cover rendering endpoints the poster URLs point at.
func startControlServer(ctx context.Context, cfg *config.Config, sup *pipeline.Supervisor) {
	srv := &controlServer{
		appCtx:   ctx,
		sup:      sup,
		renderer: render.New(),
		client:   &http.Client{Timeout: cfg.RequestTimeout},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/metrics", srv.handleMetrics)
	mux.HandleFunc("/status", srv.handleStatus)
	mux.HandleFunc("/start-cronjob", srv.handleStart)
	mux.HandleFunc("/stop-cronjob", srv.handleStop)
	mux.HandleFunc("/cover/news", srv.handleNewsCover)
	mux.HandleFunc("/cover/memoriam", srv.handleMemorialCover)

	log.Printf("Starting control server on port %s", cfg.HTTPPort)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Printf("Control server error: %v", err)
	}
}

type controlServer struct {
	appCtx   context.Context
	sup      *pipeline.Supervisor
	renderer *render.Renderer
	client   *http.Client
}

func (s *controlServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *controlServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, metrics.Global.GetStats())
}

func (s *controlServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sup.Status())
}

func (s *controlServer) handleStart(w http.ResponseWriter, r *http.Request) {
	// Pollers outlive the request; they stop with the process context.
	if err := s.sup.StartAll(s.appCtx); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, map[string]string{"status": "started"})
}

func (s *controlServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.sup.StopAll(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, map[string]string{"status": "stopped"})
}

func (s *controlServer) handleNewsCover(w http.ResponseWriter, r *http.Request) {
	headline := r.URL.Query().Get("headline")
	if headline == "" {
		writeError(w, http.StatusBadRequest, errors.New("headline is required"))
		return
	}

	bg := s.fetchImage(r.URL.Query().Get("image_url"))
	png, err := s.renderer.NewsCover(bg, headline)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	servePNG(w, png)
}

func (s *controlServer) handleMemorialCover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	birth, _ := strconv.Atoi(q.Get("birth"))
	death, _ := strconv.Atoi(q.Get("death"))
	if name == "" || birth <= 0 || death <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("name, birth and death are required"))
		return
	}

	bg := s.fetchImage(q.Get("image_url"))
	png, err := s.renderer.MemorialCover(bg, name, birth, death)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	servePNG(w, png)
}

// fetchImage downloads and decodes the cover image. Any failure falls
// back to a nil image, which renders the gradient backdrop.
func (s *controlServer) fetchImage(url string) image.Image {
	if url == "" {
		return nil
	}
	resp, err := s.client.Get(url)
	if err != nil {
		log.Printf("cover image fetch failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("cover image fetch failed: status %d for %s", resp.StatusCode, url)
		return nil
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		log.Printf("cover image decode failed: %v", err)
		return nil
	}
	return img
}

func servePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(len(png)))
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

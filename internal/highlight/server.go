// ABOUTME: HTTP endpoint that returns an uploaded video with one landmark highlighted.
// ABOUTME: Routes with gorilla/mux; CORS and access logging via gorilla/handlers.
package highlight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// maxUploadMemory is the multipart size kept in memory before spilling to disk.
const maxUploadMemory = 32 << 20

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	AllowedOrigins []string
	TempDir        string // "" uses the OS default
	Logger         *log.Logger
}

// Server serves the highlight endpoint.
type Server struct {
	annotator *Annotator
	opts      ServerOptions
	logger    *log.Logger
}

// NewServer creates a server. A nil annotator, or one without an estimator,
// answers highlight requests with 503.
func NewServer(annotator *Annotator, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{annotator: annotator, opts: opts, logger: logger}
}

// NewRouter registers the API routes.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.rootHandler).Methods("GET")
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/highlight_keypoint/{keypoint_name}", s.highlightHandler).Methods("POST")

	return r
}

// Handler wraps the router with CORS and access logging.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.opts.AllowedOrigins),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"}),
	)
	return handlers.LoggingHandler(s.logger.StandardLog().Writer(), cors(s.NewRouter()))
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello ProGuard"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) highlightHandler(w http.ResponseWriter, r *http.Request) {
	lm, err := ParseLandmark(mux.Vars(r)["keypoint_name"])
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.annotator == nil || s.annotator.Estimator == nil {
		writeDetail(w, http.StatusServiceUnavailable, "pose estimation is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	upload, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "missing video file")
		return
	}
	defer upload.Close()

	dir, err := os.MkdirTemp(s.opts.TempDir, "proguard-highlight-")
	if err != nil {
		s.logger.Error("create temp dir", "err", err)
		writeDetail(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input"+uploadExt(header.Filename))
	if err := saveUpload(in, upload); err != nil {
		s.logger.Error("save upload", "err", err)
		writeDetail(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	name := strings.ToLower(lm.String())
	out := filepath.Join(dir, fmt.Sprintf("input_%s.mp4", name))

	start := time.Now()
	stats, err := s.annotator.Annotate(r.Context(), in, out, lm)
	if err != nil {
		s.logger.Error("annotate video", "keypoint", lm, "err", err)
		writeDetail(w, http.StatusInternalServerError, "could not process video")
		return
	}
	s.logger.Info("annotated video",
		"keypoint", lm,
		"frames", stats.Frames,
		"marked", stats.Marked,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	f, err := os.Open(out)
	if err != nil {
		s.logger.Error("open output", "err", err)
		writeDetail(w, http.StatusInternalServerError, "could not process video")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".mp4"))
	http.ServeContent(w, r, name+".mp4", time.Time{}, f)
}

func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 8 {
		return ".mp4"
	}
	return ext
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

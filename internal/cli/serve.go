package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulebook/pkg/errors"
	rbio "github.com/matzehuels/rulebook/pkg/io"
	"github.com/matzehuels/rulebook/pkg/observability"
	"github.com/matzehuels/rulebook/pkg/pipeline"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command, a live preview of one rulebook.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Preview a rulebook in the browser",
		Long: `Serve a live preview of a rulebook source.

The source is re-read on every request, so edits show up on reload.
Unchanged sources are answered from the artifact cache.

Routes:
  GET /             HTML outline
  GET /latex        LaTeX manuscript
  GET /refs         reference table as JSON
  GET /diagram.svg  hierarchy diagram
  GET /health       liveness probe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			if err := errors.ValidateListenAddr(addr); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions(nil, false)
			handler := newServer(args[0], runner, opts, loggerFromContext(ctx))
			return listen(ctx, addr, handler)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+c.Config.Serve.Addr+")")
	return cmd
}

// listen serves handler on addr until ctx is cancelled.
func listen(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printSuccess("Serving on %s", StyleLink.Render("http://"+addr))
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	printInfo("Server stopped")
	return nil
}

// =============================================================================
// Preview Server
// =============================================================================

type previewServer struct {
	source string
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
}

// newServer returns the preview handler for the rulebook at source.
func newServer(source string, runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) http.Handler {
	s := &previewServer{source: source, runner: runner, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handlePage)
	r.Get("/latex", s.handleArtifact(pipeline.FormatLaTeX, "application/x-tex; charset=utf-8"))
	r.Get("/diagram.svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/refs", s.handleRefs)
	r.Get("/health", s.handleHealth)

	return r
}

// render re-reads the source and runs the pipeline for one format.
func (s *previewServer) render(ctx context.Context, format string) (*pipeline.Result, error) {
	doc, err := rbio.ImportDocument(s.source)
	if err != nil {
		return nil, err
	}
	opts := s.opts
	opts.Formats = []string{format}
	return s.runner.Execute(ctx, doc, opts)
}

func (s *previewServer) handlePage(w http.ResponseWriter, r *http.Request) {
	result, err := s.render(r.Context(), pipeline.FormatHTML)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, html.EscapeString(filepath.Base(s.source)), result.Artifacts[pipeline.FormatHTML])
}

func (s *previewServer) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.render(r.Context(), format)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(result.Artifacts[format])
	}
}

func (s *previewServer) handleRefs(w http.ResponseWriter, r *http.Request) {
	doc, err := rbio.ImportDocument(s.source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	refs, err := rulebook.BuildRefs(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refs.Ordered(doc))
}

func (s *previewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *previewServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("preview failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

// statusFor maps an error code to an HTTP status. Problems with the
// rulebook source are the client's to fix.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeDuplicateIdentifier, errors.ErrCodeUnresolvedReference,
		errors.ErrCodeTooManySubRules:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

// observe reports each request to the HTTP hooks and the debug log.
func (s *previewServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, sw.status, dur)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", sw.status, "took", dur.Round(time.Microsecond))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; line-height: 1.5; }
ol { list-style: none; padding-left: 1.25rem; }
li.Rule::before, li.SubRule::before { content: attr(id) " "; color: #3b6ea5; font-weight: bold; }
h1, h2 { font-weight: normal; }
a { color: #3b6ea5; }
</style>
</head>
<body>
%s
</body>
</html>
`

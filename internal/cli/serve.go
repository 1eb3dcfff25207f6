package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/trellisplot/trellis/pkg/buildinfo"
	"github.com/trellisplot/trellis/pkg/dataset"
	trelliserrors "github.com/trellisplot/trellis/pkg/errors"
	"github.com/trellisplot/trellis/pkg/pipeline"
	"github.com/trellisplot/trellis/pkg/render"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[render.Format]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatPNG:  "image/png",
	render.FormatHTML: "text/html; charset=utf-8",
	render.FormatDOT:  "text/vnd.graphviz",
	render.FormatJSON: "application/json",
}

// newServeCmd creates the serve command running the plot preview server.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local HTTP server that renders plots on demand",
		Long: `Serve runs a preview server. POST a multipart request to /plot with a
"data" CSV file and an "options" JSON part matching the pipeline options;
the response body is the rendered artifact in the first requested format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8718", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	c, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	runner := pipeline.NewRunner(c, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	})
	r.Post("/plot", plotHandler(runner))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Infof("Listening on %s", addr)
	printInfo("Preview server on %s", addr)
	printNextStep("Render a plot", fmt.Sprintf("curl -F data=@plot.csv -F 'options={\"kind\":\"facet\",\"x\":\"x\",\"y\":\"y\"}' http://localhost%s/plot", addr))

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		printError("Server failed: %v", err)
		return err
	}
	return nil
}

// plotHandler renders one plot per request. Requests carry a CSV file part
// named "data" and a JSON part named "options"; the first requested format
// becomes the response body.
func plotHandler(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(32 << 20); err != nil {
			httpError(w, http.StatusBadRequest, "parse multipart form: %v", err)
			return
		}

		var opts pipeline.Options
		if raw := req.FormValue("options"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &opts); err != nil {
				httpError(w, http.StatusBadRequest, "parse options: %v", err)
				return
			}
		}

		file, _, err := req.FormFile("data")
		if err != nil {
			httpError(w, http.StatusBadRequest, "missing data file: %v", err)
			return
		}
		defer file.Close()

		ds, err := dataset.FromCSV(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "read csv: %v", err)
			return
		}

		if err := opts.ValidateAndSetDefaults(); err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}

		res, err := runner.Execute(req.Context(), ds, opts)
		if err != nil {
			httpError(w, statusFor(err), "%v", err)
			return
		}

		format, _ := render.ParseFormat(opts.Formats[0])
		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Run-Id", res.RunID)
		_, _ = w.Write(res.Artifacts[string(format)])
	}
}

// statusFor maps structured error codes to HTTP status codes.
func statusFor(err error) int {
	switch trelliserrors.GetCode(err) {
	case trelliserrors.ErrCodeNotFound, trelliserrors.ErrCodeColumnNotFound:
		return http.StatusNotFound
	case trelliserrors.ErrCodeInternal:
		return http.StatusInternalServerError
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}

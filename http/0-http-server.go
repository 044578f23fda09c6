package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/programme-lv/competitions/auth"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/migrsrvc"
	"github.com/programme-lv/competitions/results"
	decorator "github.com/programme-lv/competitions/srvccqs"
	"github.com/programme-lv/competitions/submsrvc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"
)

type HttpServer struct {
	subms    *submsrvc.SubmSrvc
	migrate  decorator.QueryHandler[migrsrvc.MigrateToNextQuery, migrsrvc.MigrationResult]
	export   decorator.QueryHandler[results.ExportQuery, results.Export]
	validate *validator.Validate
	router   *chi.Mux
	srv      *http.Server

	// rendered exports, keyed by competition, format and selector
	exportCache *cache.Cache
	sfGroup     singleflight.Group
}

type Options struct {
	JwtKey         []byte
	AllowedOrigins []string
	LogLevel       slog.Level
	Env            string
}

func NewHttpServer(
	subms *submsrvc.SubmSrvc,
	migrate decorator.QueryHandler[migrsrvc.MigrateToNextQuery, migrsrvc.MigrationResult],
	export decorator.QueryHandler[results.ExportQuery, results.Export],
	opts Options,
) *HttpServer {
	router := chi.NewRouter()

	reqLogger := httplog.NewLogger("competitions", httplog.Options{
		LogLevel:         opts.LogLevel,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		QuietDownRoutes:  []string{"/metrics"},
		QuietDownPeriod:  time.Minute,
		Tags: map[string]string{
			"env": opts.Env,
		},
	})
	router.Use(httplog.RequestLogger(reqLogger))
	router.Use(requestScopedLogger)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(opts.JwtKey))

	server := &HttpServer{
		subms:       subms,
		migrate:     migrate,
		export:      export,
		validate:    validator.New(),
		router:      router,
		exportCache: cache.New(1*time.Second, 1*time.Minute),
	}

	server.routes()

	return server
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Post("/phases/{phaseId}/submissions", httpserver.postSubm)
	r.Post("/phases/{phaseId}/manually_migrate", httpserver.postMigrate)
	r.Get("/submissions/{submUuid}", httpserver.getSubm)
	r.Patch("/submissions/{submUuid}", httpserver.patchSubmStatus)
	r.Post("/submissions/{submUuid}/scores", httpserver.postScore)
	r.Get("/competitions/{compId}/results.json", httpserver.getResults(results.FormatJSON))
	r.Get("/competitions/{compId}/results.csv", httpserver.getResults(results.FormatCSV))
	r.Get("/competitions/{compId}/results.zip", httpserver.getResults(results.FormatZIP))
	r.Handle("/metrics", promhttp.Handler())
}

func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

// Serve blocks until ctx is cancelled, then drains in-flight requests.
func (httpserver *HttpServer) Serve(ctx context.Context, address string) error {
	httpserver.srv = &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpserver.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	err := httpserver.srv.Shutdown(shutdownCtx)
	if err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestScopedLogger lets services log with the request's attributes.
func requestScopedLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithLogger(r.Context(), httplog.LogEntry(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func reqLog(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context())
}

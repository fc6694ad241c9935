package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/contacts/datastores"
	"github.com/oaiiae/contacts/handlers"
	"github.com/oaiiae/contacts/router"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on when serving"       default:"localhost"`
	Port              string        `short:"p" doc:"port to listen on when serving"       default:"8888"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers" default:"15s"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type RouterOptions struct {
	EndpointsPrefix string `doc:"mount endpoints at a prefix" default:"/api"`
}

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Title    string
	Version  string
	Revision string
	Created  string
}

// NewRouter serves the contacts file under options.EndpointsPrefix + "/contacts".
func NewRouter(
	options *RouterOptions,
	build BuildInfo,
	store *datastores.ContactsFile,
	logger *slog.Logger,
) http.Handler {
	set := metrics.NewSet()
	set.NewGauge(fmt.Sprintf(`contacts_build_info{goversion=%q,version=%q,revision=%q,created=%q}`,
		runtime.Version(), build.Version, build.Revision, build.Created), func() float64 { return 1 })

	return router.New(build.Title, build.Version,
		readiness(store),
		func(w http.ResponseWriter, _ *http.Request) {
			set.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		router.OptUseMiddleware(observe(set, logger)),
		router.OptGroup(options.EndpointsPrefix,
			router.OptGroup("/contacts", router.OptAutoRegister(&handlers.Contacts{
				Store:        store,
				ErrorHandler: recordFailure,
			})),
		),
	)
}

// readiness reports the service unavailable while the contacts file cannot be loaded.
func readiness(store *datastores.ContactsFile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.Load(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		}
	}
}

// Failure kinds labelling request logs and metrics.
const (
	failureNone     = ""
	failureFormat   = "format"
	failureIO       = "io"
	failureNotFound = "not_found"
	failureInvalid  = "invalid"
	failureOther    = "other"
	failurePanic    = "panic"
)

// failureKind classifies an operation error, store errors first.
func failureKind(err error) string {
	var statusErr huma.StatusError
	switch {
	case errors.Is(err, datastores.ErrFormat):
		return failureFormat
	case errors.Is(err, datastores.ErrIO):
		return failureIO
	case errors.Is(err, datastores.ErrObjectNotFound):
		return failureNotFound
	case errors.As(err, &statusErr) && statusErr.GetStatus() == http.StatusNotFound:
		return failureNotFound
	case errors.As(err, &statusErr) && statusErr.GetStatus() < http.StatusInternalServerError:
		return failureInvalid
	default:
		return failureOther
	}
}

// request is the per-request state shared by [observe] and [recordFailure].
type request struct {
	err  error
	kind string
}

type requestKey struct{}

// recordFailure attaches err to the request observed by [observe].
func recordFailure(ctx context.Context, err error) {
	if req, ok := ctx.Value(requestKey{}).(*request); ok {
		req.err, req.kind = err, failureKind(err)
	}
}

// observe returns a middleware that recovers panics, then logs and
// meters each contacts operation labelled with its failure kind.
func observe(set *metrics.Set, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	buckets := metrics.ExponentialBuckets(1e-3, 5, 6) //nolint: mnd // arbitrary

	return func(ctx huma.Context, next func(huma.Context)) {
		op, start, req := ctx.Operation(), time.Now(), &request{}

		defer func() {
			if v := recover(); v != nil {
				req.err, req.kind = fmt.Errorf("panic: %v", v), failurePanic
				ctx.SetStatus(http.StatusInternalServerError)
			}
			if req.kind == failureNone && ctx.Status() >= http.StatusBadRequest { // rejected before the handler ran
				req.kind = failureKind(huma.NewError(ctx.Status(), http.StatusText(ctx.Status())))
			}

			labels := fmt.Sprintf(`{op=%q,status="%d",failure=%q}`, op.OperationID, ctx.Status(), req.kind)
			set.GetOrCreateCounter(`contacts_requests_total` + labels).Inc()
			set.GetOrCreatePrometheusHistogramExt(`contacts_request_duration_seconds`+labels, buckets).UpdateDuration(start)

			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String("op", op.OperationID),
				slog.String("from", ctx.RemoteAddr()),
				slog.String("x-request-id", ctx.Header("X-Request-Id")),
				slog.Int("status", ctx.Status()),
				slog.Duration("dur", time.Since(start)),
			}
			switch req.kind {
			case failureNone:
			case failureNotFound, failureInvalid:
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("failure", req.kind), slog.Any("err", req.err))
			default:
				level = slog.LevelError
				attrs = append(attrs, slog.String("failure", req.kind), slog.Any("err", req.err))
			}
			logger.LogAttrs(context.Background(), level, op.Method+" "+op.Path, attrs...)
		}()

		next(huma.WithValue(ctx, requestKey{}, req))
	}
}

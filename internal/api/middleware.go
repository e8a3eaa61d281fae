package api

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/alanjwade/tournament-manager-sub000/internal/util/httputil"
)

const maxTrackedAddrs = 4096

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	limited  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ringside",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests by handler and status code.",
		}, []string{"handler", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ringside",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency by handler.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"handler"}),
		limited: f.NewCounter(prometheus.CounterOpts{
			Namespace: "ringside",
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-address rate limiter.",
		}),
	}
}

type addrLimiter struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	byAddr map[string]*rate.Limiter
}

func newAddrLimiter(limit float64, burst int) *addrLimiter {
	return &addrLimiter{
		limit:  rate.Limit(limit),
		burst:  burst,
		byAddr: make(map[string]*rate.Limiter),
	}
}

func (l *addrLimiter) Allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byAddr[host]
	if !ok {
		if len(l.byAddr) >= maxTrackedAddrs {
			clear(l.byAddr)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byAddr[host] = lim
	}
	return lim.Allow()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

type middlewareBuilder struct {
	Log      *slog.Logger
	Metrics  *metrics
	Limiter  *addrLimiter
	Compress func(http.Handler) http.Handler
}

func newMiddlewareBuilder(log *slog.Logger, reg prometheus.Registerer, o *Options) *middlewareBuilder {
	compress := gziphandler.GzipHandler
	if o.NoCompress {
		compress = func(h http.Handler) http.Handler { return h }
	}
	return &middlewareBuilder{
		Log:      log,
		Metrics:  newMetrics(reg),
		Limiter:  newAddrLimiter(o.RateLimit, o.RateBurst),
		Compress: compress,
	}
}

type middleware struct {
	b    *middlewareBuilder
	h    http.Handler
	name string
}

func (m *middleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	req = httputil.WrapRequest(req)
	m.b.Log.Info("handle request",
		slog.String("rid", httputil.ExtractReqID(req.Context())),
		slog.String("uri", req.RequestURI),
		slog.String("method", req.Method),
		slog.String("addr", req.RemoteAddr),
		slog.String("handler", m.name),
	)
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	defer func() {
		m.b.Metrics.requests.WithLabelValues(m.name, strconv.Itoa(rec.code)).Inc()
		m.b.Metrics.duration.WithLabelValues(m.name).Observe(time.Since(start).Seconds())
	}()

	if !m.b.Limiter.Allow(req.RemoteAddr) {
		m.b.Metrics.limited.Inc()
		writeJSON(m.b.Log, rec, http.StatusTooManyRequests, &Error{Code: ErrRateLimited, Message: "too many requests"})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	m.h.ServeHTTP(rec, req)
}

func (b *middlewareBuilder) wrap(h http.Handler, name string) http.Handler {
	h = &middleware{b: b, h: h, name: name}
	h = b.Compress(h)
	return h
}

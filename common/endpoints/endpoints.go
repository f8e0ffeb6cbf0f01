package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/engine"
)

// Speculator is the part of the engine exposed over http.
type Speculator interface {
	ScanNow()
	Ledger() []engine.LedgerEntry
}

func NewAdminServer(addr string, stats stats.StatsReceiver, speculator Speculator) *AdminServer {
	s := &AdminServer{
		Addr:       addr,
		Stats:      stats,
		Speculator: speculator,
		registry:   prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "speculator",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Admin http requests by route.",
		}, []string{"route"}),
	}
	s.registry.MustRegister(s.requests)
	s.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "speculator",
		Name:      "ledger_size",
		Help:      "Tasks that had a speculative action taken.",
	}, func() float64 { return float64(len(speculator.Ledger())) }))
	return s
}

type AdminServer struct {
	Addr       string
	Stats      stats.StatsReceiver
	Speculator Speculator

	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// Handler builds the router. Serve uses it, tests drive it directly.
func (s *AdminServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.counted("help", helpHandler))
	r.HandleFunc("/health", s.counted("health", healthHandler)).Methods(http.MethodGet)
	r.HandleFunc("/admin/metrics.json", s.counted("metrics.json", s.statsHandler)).Methods(http.MethodGet)
	r.HandleFunc("/admin/scan", s.counted("scan", s.scanHandler)).Methods(http.MethodPost)
	r.HandleFunc("/admin/ledger", s.counted("ledger", s.ledgerHandler)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// Serve blocks until the listener fails.
func (s *AdminServer) Serve() error {
	log.Infof("Serving http & stats on %s", s.Addr)
	server := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *AdminServer) counted(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requests.WithLabelValues(route).Inc()
		h(w, r)
	}
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Common paths: '/health', '/metrics', '/admin/metrics.json', '/admin/ledger', POST '/admin/scan'", 501)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok")
}

func (s *AdminServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	const contentTypeHdr = "Content-Type"
	const contentTypeVal = "application/json; charset=utf-8"
	w.Header().Set(contentTypeHdr, contentTypeVal)

	pretty := r.URL.Query().Get("pretty") == "true"
	str := s.Stats.Render(pretty)
	if _, err := io.Copy(w, bytes.NewBuffer(str)); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}

func (s *AdminServer) scanHandler(w http.ResponseWriter, r *http.Request) {
	s.Stats.Counter(stats.SpeculatorAdminScanCounter).Inc(1)
	s.Speculator.ScanNow()
	log.WithFields(log.Fields{"remote": r.RemoteAddr}).Info("scan requested")
	w.WriteHeader(http.StatusAccepted)
}

func (s *AdminServer) ledgerHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(s.Speculator.Ledger()); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

type StatScope string

func MakeStatsReceiver(scope StatScope) stats.StatsReceiver {
	return stats.NewCustomStatsReceiver(stats.NewFinagleStatsRegistry).Scope(string(scope))
}

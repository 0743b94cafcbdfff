package healthcheck

import (
	"log/slog"
	"net/http"

	atom "go.uber.org/atomic"
)

// Probe reports process liveness and whether the public listener is
// accepting traffic.
type Probe struct {
	ready  atom.Bool
	logger *slog.Logger
}

func NewProbe(logger *slog.Logger) *Probe {
	return &Probe{logger: logger}
}

// SetReady updates readiness and logs transitions.
// Returns true if the status changed, false if it was already in that state.
func (p *Probe) SetReady(ready bool) (changed bool) {
	if p.ready.Swap(ready) == ready {
		return false
	}

	if ready {
		p.logger.Info("Server is ready")
	} else {
		p.logger.Warn("Server is no longer ready")
	}

	return true
}

func (p *Probe) IsReady() bool {
	return p.ready.Load()
}

// Liveness always answers 200 while the process can serve HTTP.
func (p *Probe) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Readiness answers 200 once SetReady(true) was called and 503 otherwise.
func (p *Probe) Readiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	if !p.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

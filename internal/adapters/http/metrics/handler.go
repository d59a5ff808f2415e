package metrics

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// ContentType is the text exposition format version served on /metrics.
const ContentType = "text/plain; version=0.0.4"

// Handler serves the guardian metrics from a private registry.
type Handler struct {
	gatherer prometheus.Gatherer
	log      *slog.Logger
}

// NewHandler registers collector on a fresh registry. No Go runtime or
// process collectors are added; the endpoint exposes the guardian metrics only.
func NewHandler(collector prometheus.Collector, log *slog.Logger) (*Handler, error) {
	if collector == nil {
		return nil, errors.New("collector is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return nil, err
	}
	return &Handler{gatherer: reg, log: log}, nil
}

// ServeHTTP gathers (taking the store snapshot) and then renders outside of
// any lock.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	families, err := h.gatherer.Gather()
	if err != nil {
		h.log.Error("Failed to gather metrics", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			h.log.Error("Failed to encode metrics", "error", err, "family", mf.GetName())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
)

// DefaultTimeout bounds a single remote write request.
const DefaultTimeout = 30 * time.Second

// PushConfig configures a PushRegistry.
type PushConfig struct {
	// URL is the base URL of the remote write endpoint, e.g. http://localhost:8428.
	URL string
	// Prefix is prepended to every metric name, followed by an underscore.
	Prefix   string
	Job      string
	Instance string
	Timeout  time.Duration
}

// PushRegistry accumulates metric values in memory. Flush sends the
// current value of every series in one remote write request.
type PushRegistry struct {
	url        string
	prefix     string
	job        string
	instance   string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	name   string
	labels prometheus.Labels
	value  float64
}

// NewPushRegistry creates a registry that pushes to cfg.URL.
func NewPushRegistry(cfg PushConfig) *PushRegistry {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &PushRegistry{
		url:        strings.TrimSuffix(cfg.URL, "/") + "/api/v1/write",
		prefix:     cfg.Prefix,
		job:        cfg.Job,
		instance:   cfg.Instance,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		series:     make(map[string]*series),
	}
}

func (r *PushRegistry) NewGaugeVec(opts prometheus.GaugeOpts, _ []string) (GaugeVec, error) {
	return pushGaugeVec{registry: r, name: opts.Name}, nil
}

func (r *PushRegistry) NewCounterVec(opts prometheus.CounterOpts, _ []string) (CounterVec, error) {
	return pushCounterVec{registry: r, name: opts.Name}, nil
}

func (r *PushRegistry) update(name string, labels prometheus.Labels, fn func(float64) float64) {
	key := seriesKey(name, labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[key]
	if !ok {
		s = &series{name: name, labels: maps.Clone(labels)}
		r.series[key] = s
	}
	s.value = fn(s.value)
}

// Len returns the number of series recorded so far.
func (r *PushRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.series)
}

// Flush pushes every series. Nothing is sent when no series exist.
func (r *PushRegistry) Flush(ctx context.Context) error {
	req := r.writeRequest()
	if len(req.Timeseries) == 0 {
		return nil
	}

	data, err := proto.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(snappy.Encode(nil, data)))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// writeRequest builds one time series per recorded series, ordered by key.
func (r *PushRegistry) writeRequest() *prompb.WriteRequest {
	ts := r.now().UnixMilli()

	r.mu.Lock()
	defer r.mu.Unlock()
	keys := slices.Sorted(maps.Keys(r.series))
	out := make([]prompb.TimeSeries, 0, len(keys))
	for _, key := range keys {
		s := r.series[key]
		out = append(out, prompb.TimeSeries{
			Labels:  r.labels(s),
			Samples: []prompb.Sample{{Value: s.value, Timestamp: ts}},
		})
	}
	return &prompb.WriteRequest{Timeseries: out}
}

func (r *PushRegistry) labels(s *series) []prompb.Label {
	name := s.name
	if r.prefix != "" {
		name = r.prefix + "_" + name
	}
	labels := make([]prompb.Label, 0, len(s.labels)+3)
	labels = append(labels, prompb.Label{Name: "__name__", Value: name})
	if r.job != "" {
		labels = append(labels, prompb.Label{Name: "job", Value: r.job})
	}
	if r.instance != "" {
		labels = append(labels, prompb.Label{Name: "instance", Value: r.instance})
	}
	for _, k := range slices.Sorted(maps.Keys(s.labels)) {
		labels = append(labels, prompb.Label{Name: k, Value: s.labels[k]})
	}
	return labels
}

func seriesKey(name string, labels prometheus.Labels) string {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		fmt.Fprintf(&b, ",%s=%s", k, labels[k])
	}
	return b.String()
}

type pushGaugeVec struct {
	registry *PushRegistry
	name     string
}

func (v pushGaugeVec) With(labels prometheus.Labels) Gauge {
	return pushSeries{registry: v.registry, name: v.name, labels: labels}
}

type pushCounterVec struct {
	registry *PushRegistry
	name     string
}

func (v pushCounterVec) With(labels prometheus.Labels) Counter {
	return pushSeries{registry: v.registry, name: v.name, labels: labels}
}

type pushSeries struct {
	registry *PushRegistry
	name     string
	labels   prometheus.Labels
}

func (s pushSeries) Set(v float64) {
	s.registry.update(s.name, s.labels, func(float64) float64 { return v })
}

func (s pushSeries) Inc() {
	s.Add(1)
}

func (s pushSeries) Add(v float64) {
	if v < 0 {
		panic("counter cannot decrease in value")
	}
	s.registry.update(s.name, s.labels, func(old float64) float64 { return old + v })
}

package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder keeps batch-run gauges on a private registry. A nil Recorder
// ignores every call.
type Recorder struct {
	registry *prometheus.Registry

	stageRecords  *prometheus.GaugeVec
	stageDuration *prometheus.GaugeVec
	totalTeams    prometheus.Gauge
	totalMentions prometheus.Gauge
	rawEntries    prometheus.Gauge
	lastRun       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orgtree_stage_records",
			Help: "Records produced by the last run of each pipeline stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orgtree_stage_duration_seconds",
			Help: "Wall time of the last run of each pipeline stage.",
		}, []string{"stage"}),
		totalTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orgtree_total_teams",
			Help: "Teams in the last written document.",
		}),
		totalMentions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orgtree_total_mentions",
			Help: "Sum of mention counts in the last written document.",
		}),
		rawEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orgtree_raw_entries",
			Help: "Top-level entries in the last raw input.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orgtree_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}
	r.registry.MustRegister(r.stageRecords, r.stageDuration, r.totalTeams, r.totalMentions, r.rawEntries, r.lastRun)
	return r
}

// RecordStage stores the output size and duration of one pipeline stage.
func (r *Recorder) RecordStage(stage string, records int, took time.Duration) {
	if r == nil {
		return
	}
	r.stageRecords.WithLabelValues(stage).Set(float64(records))
	r.stageDuration.WithLabelValues(stage).Set(took.Seconds())
}

// RecordRun stores the totals of a completed run.
func (r *Recorder) RecordRun(teams, mentions, rawEntries int, at time.Time) {
	if r == nil {
		return
	}
	r.totalTeams.Set(float64(teams))
	r.totalMentions.Set(float64(mentions))
	r.rawEntries.Set(float64(rawEntries))
	r.lastRun.Set(float64(at.Unix()))
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes all gauges in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

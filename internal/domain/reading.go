package domain

import "time"

// Metric identifies one monitored measurement channel on a station.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricGas         Metric = "gas"
	MetricVibration   Metric = "vibration"
	MetricCPUUsage    Metric = "cpu_usage"
)

// AllMetrics lists the metrics a lab station reports, in canonical order.
func AllMetrics() []Metric {
	return []Metric{MetricTemperature, MetricGas, MetricVibration, MetricCPUUsage}
}

// Reading is the canonical unit of telemetry in BreachWatch: one timestamped
// observation for a single metric on a single station.
type Reading struct {
	SensorID  string    `json:"sensor_id"`
	Metric    Metric    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
}

// Baseline summarizes the recent history of one (sensor, metric) pair.
// StdDev is the sample standard deviation and is 0 when SampleCount <= 1.
type Baseline struct {
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	SampleCount int     `json:"sample_count"`
}

// Method records which detection rule produced a verdict's score.
type Method string

const (
	MethodNone      Method = ""
	MethodThreshold Method = "threshold"
	MethodZScore    Method = "zscore"
)

// Verdict is the anomaly determination for one metric in one cycle.
// Score is the z-score magnitude for MethodZScore and the normalized
// threshold-exceedance ratio for MethodThreshold.
type Verdict struct {
	Metric    Metric  `json:"metric"`
	Value     float64 `json:"value"`
	Anomalous bool    `json:"anomalous"`
	Method    Method  `json:"method,omitempty"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason,omitempty"`
}

// Assessment is the aggregate breach result for one sampling cycle.
// Metrics holds the anomalous metric names, sorted; it is empty exactly
// when Level is 0.
type Assessment struct {
	SensorID       string    `json:"sensor_id"`
	Timestamp      time.Time `json:"ts"`
	Level          int       `json:"level"`
	Metrics        []Metric  `json:"metrics,omitempty"`
	MaxScore       float64   `json:"max_score"`
	Label          string    `json:"label"`
	Recommendation string    `json:"recommendation,omitempty"`
}

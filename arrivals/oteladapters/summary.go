package oteladapters

import (
	"context"
	"sort"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// SummaryLine is one aggregated instrument of a Summary.
type SummaryLine struct {
	Name  string
	Kind  string
	Count uint64
	Value float64
}

// Summary collects everything recorded so far through reader and aggregates it per instrument,
// across all attribute sets: counters are summed, histograms report count and sum, gauges report
// the last value of the last data point. Lines are sorted by name.
func Summary(ctx context.Context, reader *sdkmetric.ManualReader) ([]SummaryLine, error) {
	var resourceMetrics metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &resourceMetrics); err != nil {
		return nil, err
	}

	var lines []SummaryLine

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			line := SummaryLine{Name: m.Name}

			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				line.Kind = "counter"
				for _, dp := range data.DataPoints {
					line.Value += float64(dp.Value)
					line.Count++
				}
			case metricdata.Histogram[float64]:
				line.Kind = "histogram"
				for _, dp := range data.DataPoints {
					line.Count += dp.Count
					line.Value += dp.Sum
				}
			case metricdata.Gauge[float64]:
				line.Kind = "gauge"
				for _, dp := range data.DataPoints {
					line.Value = dp.Value
					line.Count++
				}
			default:
				continue
			}

			lines = append(lines, line)
		}
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })

	return lines, nil
}

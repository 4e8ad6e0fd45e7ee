package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/posalpro/posalpro/shared/platform/analytics"
)

// DummyMetricsSink acumula las métricas recibidas para inspección en tests.
type DummyMetricsSink struct {
	Logged []analytics.ListQueryMetric
	mu     sync.Mutex
}

func (s *DummyMetricsSink) LogBatch(ctx context.Context, metrics []analytics.ListQueryMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Logged = append(s.Logged, metrics...)
	return nil
}

func (s *DummyMetricsSink) GetReductionTrend(ctx context.Context, start, end time.Time) ([]analytics.ReductionTrend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Logged) == 0 {
		return nil, nil
	}

	var sum float64
	for _, m := range s.Logged {
		sum += m.ReductionPercent
	}
	day := s.Logged[0].EventTime.Truncate(24 * time.Hour)
	return []analytics.ReductionTrend{{
		Day:          day,
		QueryCount:   uint64(len(s.Logged)),
		AvgReduction: sum / float64(len(s.Logged)),
	}}, nil
}

// Count devuelve cuántas métricas se registraron (seguro para uso concurrente).
func (s *DummyMetricsSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Logged)
}

var _ analytics.QueryMetricsSink = (*DummyMetricsSink)(nil)

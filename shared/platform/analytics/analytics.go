package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ListQueryMetric es la observación de una consulta de listado: qué entidad,
// qué estrategia de paginación y cuánto redujo la proyección de campos.
type ListQueryMetric struct {
	Entity           string
	Mode             string // "cursor" | "offset"
	ItemCount        int
	FieldsRequested  int
	FieldsAvailable  int
	FieldsReturned   int
	ReductionPercent float64
	RejectedFields   int
	Duration         time.Duration
	EventTime        time.Time
}

// ReductionTrend agrega métricas de reducción por día.
type ReductionTrend struct {
	Day          time.Time
	QueryCount   uint64
	AvgReduction float64
}

// QueryMetricsSink define el contrato del almacén analítico de métricas de
// consulta. Las implementaciones deben tolerar lotes de cualquier tamaño.
type QueryMetricsSink interface {
	LogBatch(ctx context.Context, metrics []ListQueryMetric) error
	GetReductionTrend(ctx context.Context, start, end time.Time) ([]ReductionTrend, error)
}

// AsyncLog envía una métrica al sink en background sin bloquear la petición.
// Un sink nil desactiva la observabilidad sin tocar al llamador.
func AsyncLog(sink QueryMetricsSink, m ListQueryMetric, log *zap.Logger) {
	if sink == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := sink.LogBatch(ctx, []ListQueryMetric{m}); err != nil {
			log.Warn("Query metric logging failed",
				zap.String("entity", m.Entity),
				zap.Error(err))
		}
	}()
}

package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/posalpro/posalpro/shared/platform/analytics"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// QueryMetricsRepo implementa analytics.QueryMetricsSink sobre ClickHouse.
type QueryMetricsRepo struct {
	db *sql.DB
}

// NewQueryMetricsRepo es el constructor.
func NewQueryMetricsRepo(addr string, dbName string) (*QueryMetricsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &QueryMetricsRepo{db: conn}, nil
}

// LogBatch inserta un lote de métricas. ClickHouse funciona mejor con
// inserciones en lotes.
func (r *QueryMetricsRepo) LogBatch(ctx context.Context, metrics []analytics.ListQueryMetric) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO list_query_metrics (entity, mode, item_count, fields_requested, fields_available, fields_returned, reduction_percent, rejected_fields, duration_ms, event_time)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range metrics {
		if _, err := stmt.ExecContext(
			ctx,
			m.Entity,
			m.Mode,
			uint32(m.ItemCount),
			uint16(m.FieldsRequested),
			uint16(m.FieldsAvailable),
			uint16(m.FieldsReturned),
			m.ReductionPercent,
			uint16(m.RejectedFields),
			float64(m.Duration.Microseconds())/1000,
			m.EventTime,
		); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for entity %s: %w", m.Entity, err)
		}
	}

	return tx.Commit()
}

// GetReductionTrend agrega por día cuántos listados hubo y cuál fue la
// reducción media de payload lograda por la proyección de campos.
func (r *QueryMetricsRepo) GetReductionTrend(ctx context.Context, start, end time.Time) ([]analytics.ReductionTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			count() AS query_count,
			avg(reduction_percent) AS avg_reduction
		FROM list_query_metrics
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []analytics.ReductionTrend
	for rows.Next() {
		var trend analytics.ReductionTrend
		if err := rows.Scan(&trend.Day, &trend.QueryCount, &trend.AvgReduction); err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *QueryMetricsRepo) InitSchema(ctx context.Context) error {
	// Particionada por mes y ordenada por los campos comunes de consulta.
	// Los contadores de campos van en UInt16: un cliente puede mandar
	// cientos de nombres distintos y un UInt8 los truncaría módulo 256.
	query := `
		CREATE TABLE IF NOT EXISTS list_query_metrics (
			entity            String,
			mode              String,
			item_count        UInt32,
			fields_requested  UInt16,
			fields_available  UInt16,
			fields_returned   UInt16,
			reduction_percent Float64,
			rejected_fields   UInt16,
			duration_ms       Float64,
			event_time        DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (entity, mode, event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Verificación estática de la interfaz.
var _ analytics.QueryMetricsSink = (*QueryMetricsRepo)(nil)

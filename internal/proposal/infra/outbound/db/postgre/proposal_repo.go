package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	proposalDomain "github.com/posalpro/posalpro/internal/proposal/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type ProposalRepoPostgres struct {
	db *sql.DB
}

func NewProposalRepoPostgres(db *sql.DB) *ProposalRepoPostgres {
	return &ProposalRepoPostgres{db: db}
}

// ------------------ Helper DRY para insertar en outbox ------------------

func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, false)`,
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType, payloadBytes, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// ------------------ CRUD + Outbox ------------------

// Create inserta propuesta y evento en transacción
func (r *ProposalRepoPostgres) Create(ctx context.Context, p *proposalDomain.Proposal, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO proposals (id, title, status, customer_id, value, currency, due_date, created_at, updated_at, internal_notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Title, string(p.Status), uuidPtrToArg(p.CustomerID), p.Value, p.Currency,
		p.DueDate, p.CreatedAt, p.UpdatedAt, p.InternalNotes,
	)
	if err != nil {
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// Update actualiza propuesta y crea evento en transacción
func (r *ProposalRepoPostgres) Update(ctx context.Context, p *proposalDomain.Proposal, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE proposals SET title=$1, status=$2, customer_id=$3, value=$4, currency=$5,
		 due_date=$6, updated_at=$7, internal_notes=$8 WHERE id=$9`,
		p.Title, string(p.Status), uuidPtrToArg(p.CustomerID), p.Value, p.Currency,
		p.DueDate, p.UpdatedAt, p.InternalNotes, p.ID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return proposalDomain.ErrProposalNotFound
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// DeleteByID elimina propuesta y crea evento en transacción
func (r *ProposalRepoPostgres) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM proposals WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return proposalDomain.ErrProposalNotFound
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// GetByID hidrata la propuesta completa (lectura puntual, sin proyección).
func (r *ProposalRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*proposalDomain.Proposal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, status, customer_id, value, currency, due_date, created_at, updated_at, internal_notes
		 FROM proposals WHERE id=$1`, id)

	buf := &proposalRow{}
	var notes sql.NullString
	err := row.Scan(&buf.idStr, &buf.title, &buf.status, &buf.customerID, &buf.value,
		&buf.currency, &buf.dueDate, &buf.createdAt, &buf.updatedAt, &notes)
	if err == sql.ErrNoRows {
		return nil, proposalDomain.ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}

	p, err := buf.toDomain(allProposalFields)
	if err != nil {
		return nil, err
	}
	p.InternalNotes = notes.String
	return p, nil
}

// ------------------ Listado paginado con proyección ------------------

// Traduce criterios neutrales a SQL para Postgres ($1, $2...)
func (r *ProposalRepoPostgres) applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	if criteria == nil {
		return "", nil
	}
	conds := criteria.ToConditions()
	var clauses []string
	var args []interface{}
	for i, c := range conds {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", c.Field, c.Op, i+1))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

// FetchPage emite la consulta de página: proyección del spec, predicado
// keyset si hay ancla, orden total (campo, id) y ventana limit/offset.
func (r *ProposalRepoPostgres) FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*proposalDomain.Proposal, error) {
	whereSQL, args := r.applyCriteria(criteria)

	var clauses []string
	if whereSQL != "" {
		clauses = append(clauses, whereSQL)
	}
	if keysetSQL, keysetArgs := sharedQuery.BuildKeysetClause(spec.Keyset, "id", sharedQuery.PlaceholderDollar, len(args)); keysetSQL != "" {
		clauses = append(clauses, keysetSQL)
		args = append(args, keysetArgs...)
	}

	query := "SELECT " + sharedQuery.BuildSelectColumns(spec.Selection) + " FROM proposals"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " " + sharedQuery.BuildOrderBy(spec.Sort, "id")
	query += fmt.Sprintf(" LIMIT %d", spec.Limit)
	if spec.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", spec.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []*proposalDomain.Proposal
	for rows.Next() {
		buf := &proposalRow{}
		dests, err := buf.scanDests(spec.Selection.Fields)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		p, err := buf.toDomain(spec.Selection.Fields)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}

	return proposals, rows.Err()
}

// CountByCriteria es la consulta de total del modo offset.
func (r *ProposalRepoPostgres) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	whereSQL, args := r.applyCriteria(criteria)

	query := "SELECT COUNT(*) FROM proposals"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ------------------ Hidratación selectiva ------------------

var allProposalFields = []string{
	"id", "title", "status", "customer_id", "value", "currency",
	"due_date", "created_at", "updated_at",
}

// proposalRow es el buffer de escaneo: todas las columnas como Null* para
// poder hidratar cualquier subconjunto proyectado.
type proposalRow struct {
	idStr      string
	title      sql.NullString
	status     sql.NullString
	customerID sql.NullString
	value      sql.NullFloat64
	currency   sql.NullString
	dueDate    sql.NullTime
	createdAt  sql.NullTime
	updatedAt  sql.NullTime
}

// scanDests devuelve los destinos de Scan en el orden de la proyección.
func (b *proposalRow) scanDests(fields []string) ([]interface{}, error) {
	dests := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			dests = append(dests, &b.idStr)
		case "title":
			dests = append(dests, &b.title)
		case "status":
			dests = append(dests, &b.status)
		case "customer_id":
			dests = append(dests, &b.customerID)
		case "value":
			dests = append(dests, &b.value)
		case "currency":
			dests = append(dests, &b.currency)
		case "due_date":
			dests = append(dests, &b.dueDate)
		case "created_at":
			dests = append(dests, &b.createdAt)
		case "updated_at":
			dests = append(dests, &b.updatedAt)
		default:
			return nil, fmt.Errorf("unprojectable field %q", f)
		}
	}
	return dests, nil
}

// toDomain vuelca el buffer en el dominio, poblando solo los campos
// proyectados; el resto queda sin hidratar y no se serializa.
func (b *proposalRow) toDomain(fields []string) (*proposalDomain.Proposal, error) {
	p := &proposalDomain.Proposal{}
	for _, f := range fields {
		switch f {
		case "id":
			parsed, err := uuid.Parse(b.idStr)
			if err != nil {
				return nil, fmt.Errorf("invalid UUID in DB: %w", err)
			}
			p.ID = parsed
		case "title":
			p.Title = b.title.String
		case "status":
			p.Status = proposalDomain.ProposalStatus(b.status.String)
		case "customer_id":
			if b.customerID.Valid {
				parsed, err := uuid.Parse(b.customerID.String)
				if err != nil {
					return nil, fmt.Errorf("invalid customer UUID in DB: %w", err)
				}
				p.CustomerID = &parsed
			}
		case "value":
			if b.value.Valid {
				v := b.value.Float64
				p.Value = &v
			}
		case "currency":
			p.Currency = b.currency.String
		case "due_date":
			if b.dueDate.Valid {
				t := b.dueDate.Time
				p.DueDate = &t
			}
		case "created_at":
			if b.createdAt.Valid {
				t := b.createdAt.Time
				p.CreatedAt = &t
			}
		case "updated_at":
			if b.updatedAt.Valid {
				t := b.updatedAt.Time
				p.UpdatedAt = &t
			}
		}
	}
	return p, nil
}

func uuidPtrToArg(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

// ------------------ Inicialización ------------------

func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS proposals (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		customer_id UUID,
		value DOUBLE PRECISION,
		currency TEXT NOT NULL DEFAULT 'USD',
		due_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP,
		internal_notes TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return err
	}

	// Índice compuesto para el orden total del keyset por defecto.
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_proposals_created_at_id ON proposals (created_at, id)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS outbox (
		id UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT FALSE
	)`)
	return err
}

// Verificación estática
var _ proposalDomain.ProposalRepository = (*ProposalRepoPostgres)(nil)

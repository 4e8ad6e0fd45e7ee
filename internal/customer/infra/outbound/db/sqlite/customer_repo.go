package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	customerDomain "github.com/posalpro/posalpro/internal/customer/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type CustomerRepoSQLite struct {
	db *sql.DB
}

func NewCustomerRepoSQLite(db *sql.DB) *CustomerRepoSQLite {
	return &CustomerRepoSQLite{db: db}
}

// ------------------ Helper DRY para insertar en outbox ------------------

func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, payloadBytes, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// ------------------ CRUD + Outbox ------------------

func (r *CustomerRepoSQLite) Create(ctx context.Context, c *customerDomain.Customer, evt sharedDomain.OutboxEvent) error {
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
		`INSERT INTO customers (id, name, email, tier, industry, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Email, string(c.Tier), c.Industry, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *CustomerRepoSQLite) Update(ctx context.Context, c *customerDomain.Customer, evt sharedDomain.OutboxEvent) error {
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
		`UPDATE customers SET name=?, email=?, tier=?, industry=?, status=?, updated_at=? WHERE id=?`,
		c.Name, c.Email, string(c.Tier), c.Industry, string(c.Status), c.UpdatedAt, c.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return customerDomain.ErrCustomerNotFound
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

func (r *CustomerRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id=?`, id.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return customerDomain.ErrCustomerNotFound
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

func (r *CustomerRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, tier, industry, status, created_at, updated_at
		 FROM customers WHERE id=?`, id.String())

	buf := &customerRow{}
	err := row.Scan(&buf.idStr, &buf.name, &buf.email, &buf.tier, &buf.industry,
		&buf.status, &buf.createdAt, &buf.updatedAt)
	if err == sql.ErrNoRows {
		return nil, customerDomain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	return buf.toDomain(allCustomerFields)
}

// ------------------ Listado paginado con proyección ------------------

func (r *CustomerRepoSQLite) applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	if criteria == nil {
		return "", nil
	}
	conds := criteria.ToConditions()
	var clauses []string
	var args []interface{}
	for _, c := range conds {
		// SQLite no tiene ILIKE; LIKE ya es insensible a mayúsculas en ASCII.
		op := c.Op
		if op == sharedDomain.OpILike {
			op = sharedDomain.OpLike
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", c.Field, op))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *CustomerRepoSQLite) FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*customerDomain.Customer, error) {
	whereSQL, args := r.applyCriteria(criteria)

	var clauses []string
	if whereSQL != "" {
		clauses = append(clauses, whereSQL)
	}
	if keysetSQL, keysetArgs := sharedQuery.BuildKeysetClause(spec.Keyset, "id", sharedQuery.PlaceholderQuestion, len(args)); keysetSQL != "" {
		clauses = append(clauses, keysetSQL)
		args = append(args, keysetArgs...)
	}

	query := "SELECT " + sharedQuery.BuildSelectColumns(spec.Selection) + " FROM customers"
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

	var customers []*customerDomain.Customer
	for rows.Next() {
		buf := &customerRow{}
		dests, err := buf.scanDests(spec.Selection.Fields)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		c, err := buf.toDomain(spec.Selection.Fields)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

func (r *CustomerRepoSQLite) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	whereSQL, args := r.applyCriteria(criteria)

	query := "SELECT COUNT(*) FROM customers"
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

var allCustomerFields = []string{
	"id", "name", "email", "tier", "industry", "status", "created_at", "updated_at",
}

type customerRow struct {
	idStr     string
	name      sql.NullString
	email     sql.NullString
	tier      sql.NullString
	industry  sql.NullString
	status    sql.NullString
	createdAt sql.NullTime
	updatedAt sql.NullTime
}

func (b *customerRow) scanDests(fields []string) ([]interface{}, error) {
	dests := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			dests = append(dests, &b.idStr)
		case "name":
			dests = append(dests, &b.name)
		case "email":
			dests = append(dests, &b.email)
		case "tier":
			dests = append(dests, &b.tier)
		case "industry":
			dests = append(dests, &b.industry)
		case "status":
			dests = append(dests, &b.status)
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

func (b *customerRow) toDomain(fields []string) (*customerDomain.Customer, error) {
	c := &customerDomain.Customer{}
	for _, f := range fields {
		switch f {
		case "id":
			parsed, err := uuid.Parse(b.idStr)
			if err != nil {
				return nil, fmt.Errorf("invalid UUID in DB: %w", err)
			}
			c.ID = parsed
		case "name":
			c.Name = b.name.String
		case "email":
			c.Email = b.email.String
		case "tier":
			c.Tier = customerDomain.CustomerTier(b.tier.String)
		case "industry":
			c.Industry = b.industry.String
		case "status":
			c.Status = customerDomain.CustomerStatus(b.status.String)
		case "created_at":
			if b.createdAt.Valid {
				t := b.createdAt.Time
				c.CreatedAt = &t
			}
		case "updated_at":
			if b.updatedAt.Valid {
				t := b.updatedAt.Time
				c.UpdatedAt = &t
			}
		}
	}
	return c, nil
}

// ------------------ Inicialización ------------------

func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		tier TEXT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_customers_created_at_id ON customers (created_at, id)`)
	return err
}

// Verificación estática
var _ customerDomain.CustomerRepository = (*CustomerRepoSQLite)(nil)

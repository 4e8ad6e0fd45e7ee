package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	productDomain "github.com/posalpro/posalpro/internal/product/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type ProductRepoSQLite struct {
	db *sql.DB
}

func NewProductRepoSQLite(db *sql.DB) *ProductRepoSQLite {
	return &ProductRepoSQLite{db: db}
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

func (r *ProductRepoSQLite) Create(ctx context.Context, p *productDomain.Product, evt sharedDomain.OutboxEvent) error {
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
		`INSERT INTO products (id, sku, name, category, price, active, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.SKU, p.Name, p.Category, p.Price, boolPtrToArg(p.Active), p.Description, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ProductRepoSQLite) Update(ctx context.Context, p *productDomain.Product, evt sharedDomain.OutboxEvent) error {
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
		`UPDATE products SET sku=?, name=?, category=?, price=?, active=?, description=? WHERE id=?`,
		p.SKU, p.Name, p.Category, p.Price, boolPtrToArg(p.Active), p.Description, p.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return productDomain.ErrProductNotFound
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

func (r *ProductRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return productDomain.ErrProductNotFound
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

func (r *ProductRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, sku, name, category, price, active, description, created_at
		 FROM products WHERE id=?`, id.String())

	buf := &productRow{}
	err := row.Scan(&buf.idStr, &buf.sku, &buf.name, &buf.category, &buf.price,
		&buf.active, &buf.description, &buf.createdAt)
	if err == sql.ErrNoRows {
		return nil, productDomain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return buf.toDomain(allProductFields)
}

// ------------------ Listado paginado con proyección ------------------

func (r *ProductRepoSQLite) applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	if criteria == nil {
		return "", nil
	}
	conds := criteria.ToConditions()
	var clauses []string
	var args []interface{}
	for _, c := range conds {
		clauses = append(clauses, fmt.Sprintf("%s %s ?", c.Field, c.Op))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *ProductRepoSQLite) FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*productDomain.Product, error) {
	whereSQL, args := r.applyCriteria(criteria)

	var clauses []string
	if whereSQL != "" {
		clauses = append(clauses, whereSQL)
	}
	if keysetSQL, keysetArgs := sharedQuery.BuildKeysetClause(spec.Keyset, "id", sharedQuery.PlaceholderQuestion, len(args)); keysetSQL != "" {
		clauses = append(clauses, keysetSQL)
		args = append(args, keysetArgs...)
	}

	query := "SELECT " + sharedQuery.BuildSelectColumns(spec.Selection) + " FROM products"
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

	var products []*productDomain.Product
	for rows.Next() {
		buf := &productRow{}
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
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *ProductRepoSQLite) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	whereSQL, args := r.applyCriteria(criteria)

	query := "SELECT COUNT(*) FROM products"
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

var allProductFields = []string{
	"id", "sku", "name", "category", "price", "active", "description", "created_at",
}

type productRow struct {
	idStr       string
	sku         sql.NullString
	name        sql.NullString
	category    sql.NullString
	price       sql.NullFloat64
	active      sql.NullInt64 // SQLite guarda booleanos como 0/1
	description sql.NullString
	createdAt   sql.NullTime
}

func (b *productRow) scanDests(fields []string) ([]interface{}, error) {
	dests := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			dests = append(dests, &b.idStr)
		case "sku":
			dests = append(dests, &b.sku)
		case "name":
			dests = append(dests, &b.name)
		case "category":
			dests = append(dests, &b.category)
		case "price":
			dests = append(dests, &b.price)
		case "active":
			dests = append(dests, &b.active)
		case "description":
			dests = append(dests, &b.description)
		case "created_at":
			dests = append(dests, &b.createdAt)
		default:
			return nil, fmt.Errorf("unprojectable field %q", f)
		}
	}
	return dests, nil
}

func (b *productRow) toDomain(fields []string) (*productDomain.Product, error) {
	p := &productDomain.Product{}
	for _, f := range fields {
		switch f {
		case "id":
			parsed, err := uuid.Parse(b.idStr)
			if err != nil {
				return nil, fmt.Errorf("invalid UUID in DB: %w", err)
			}
			p.ID = parsed
		case "sku":
			p.SKU = b.sku.String
		case "name":
			p.Name = b.name.String
		case "category":
			p.Category = b.category.String
		case "price":
			if b.price.Valid {
				v := b.price.Float64
				p.Price = &v
			}
		case "active":
			if b.active.Valid {
				a := b.active.Int64 != 0
				p.Active = &a
			}
		case "description":
			p.Description = b.description.String
		case "created_at":
			if b.createdAt.Valid {
				t := b.createdAt.Time
				p.CreatedAt = &t
			}
		}
	}
	return p, nil
}

func boolPtrToArg(b *bool) interface{} {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

// ------------------ Inicialización ------------------

func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		price REAL,
		active INTEGER NOT NULL DEFAULT 1,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_products_created_at_id ON products (created_at, id)`)
	if err != nil {
		return err
	}

	// El catálogo puede ser el único módulo sobre SQLite: la tabla outbox
	// tiene que existir aunque el resto de entidades vivan en otro almacén.
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

// Verificación estática
var _ productDomain.ProductRepository = (*ProductRepoSQLite)(nil)

package query

import (
	"context"
	"fmt"

	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	"github.com/google/uuid"
)

// ---------------- Ejecutor de consultas paginadas ----------------

// Keyset es el ancla decodificada de un cursor: la consulta continúa
// estrictamente después de la fila (SortValue, ID).
type Keyset struct {
	Field     string
	Desc      bool
	SortValue interface{} // nil = la fila ancla tenía el campo de orden NULL
	ID        uuid.UUID
}

// FetchSpec es lo que el adaptador de almacén necesita para emitir UNA
// consulta de rango o de skip/limit: proyección, orden, ancla opcional y
// ventana. El adaptador no decide nada; solo traduce.
type FetchSpec struct {
	Selection Selection
	Sort      Sort
	Keyset    *Keyset // solo modo cursor; nil = desde el principio del orden
	Limit     int     // filas a pedir (en modo cursor ya incluye la fila centinela)
	Offset    int     // solo modo offset
}

// Fetcher emite la consulta contra el almacén y devuelve las filas en el
// orden (Sort.Field, id) pedido. Es la única operación con I/O del núcleo.
type Fetcher[T any] func(ctx context.Context, spec FetchSpec) ([]T, error)

// Counter emite la consulta de total (solo modo offset).
type Counter func(ctx context.Context) (int, error)

// Anchor extrae (valor del campo de orden activo, id) de una fila para
// construir el próximo cursor. El valor debe ser exactamente el hidratado
// desde el almacén.
type Anchor[T any] func(item T, sortField string) (sortValue interface{}, id uuid.UUID)

// ValidateCriteria rechaza filtros que referencien campos fuera del
// allow-list, antes de emitir ninguna consulta ("fail fast, fail cheap").
func ValidateCriteria(d *Descriptor, criteria sharedDomain.Criteria) error {
	if criteria == nil {
		return nil
	}
	for _, cond := range criteria.ToConditions() {
		if !d.Allowed(cond.Field) {
			return fmt.Errorf("%w: field %q not filterable on %s", ErrInvalidFilter, cond.Field, d.Entity)
		}
	}
	return nil
}

// resolveSort normaliza la ordenación de la petición contra el descriptor.
// Ordenar por un campo fuera del allow-list es un filtro inválido.
func resolveSort(d *Descriptor, req ListRequest) (Sort, error) {
	sort := req.Sort
	if sort.Field == "" {
		sort = d.DefaultSort
	}
	if !d.Allowed(sort.Field) {
		return Sort{}, fmt.Errorf("%w: sort field %q not allowed on %s", ErrInvalidFilter, sort.Field, d.Entity)
	}
	return sort, nil
}

// Paginate es el ejecutor central de listados: decide estrategia, proyecta
// campos, interpreta el cursor, pide la página al almacén y ensambla el
// resultado. No guarda estado entre llamadas y no reintenta nada.
func Paginate[T any](
	ctx context.Context,
	d *Descriptor,
	req ListRequest,
	limits Limits,
	fetch Fetcher[T],
	count Counter,
	anchor Anchor[T],
) (*Page[T], error) {
	sort, err := resolveSort(d, req)
	if err != nil {
		return nil, err
	}

	sel := Project(d, req.Fields)
	strat := DecideStrategy(req, limits)
	limit := limits.Clamp(req.Limit)

	if strat.Mode == ModeOffset {
		return paginateOffset(ctx, d, req, sel, sort, strat, limit, fetch, count)
	}
	return paginateCursor(ctx, d, req, sel, sort, strat, limit, fetch, anchor)
}

func paginateCursor[T any](
	ctx context.Context,
	d *Descriptor,
	req ListRequest,
	sel Selection,
	sort Sort,
	strat Strategy,
	limit int,
	fetch Fetcher[T],
	anchor Anchor[T],
) (*Page[T], error) {
	// El campo de orden debe hidratarse siempre en modo cursor: el ancla del
	// siguiente token se extrae de la última fila devuelta.
	sel = sel.WithField(sort.Field)

	var keyset *Keyset

	if req.Cursor != "" {
		sortValue, id, err := DecodeCursor(req.Cursor)
		if err != nil {
			return nil, err
		}
		spec := d.Fields[sort.Field]
		if !matchesKind(sortValue, spec.Kind, spec.Nullable) {
			return nil, fmt.Errorf("%w: cursor does not match sort key %q", ErrMalformedCursor, sort.Field)
		}
		keyset = &Keyset{Field: sort.Field, Desc: sort.Desc, SortValue: sortValue, ID: id}
	}

	// Se pide una fila extra: su existencia es el hasNextPage y se descarta.
	items, err := fetch(ctx, FetchSpec{
		Selection: sel,
		Sort:      sort,
		Keyset:    keyset,
		Limit:     limit + 1,
	})
	if err != nil {
		return nil, &StoreUnavailableError{Cause: err}
	}

	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}

	var nextCursor string
	if hasNext && len(items) > 0 {
		sortValue, id := anchor(items[len(items)-1], sort.Field)
		nextCursor, err = EncodeCursor(sortValue, id)
		if err != nil {
			return nil, err
		}
	}

	return assembleCursorPage(items, hasNext, nextCursor, limit, d, sel, strat), nil
}

func paginateOffset[T any](
	ctx context.Context,
	d *Descriptor,
	req ListRequest,
	sel Selection,
	sort Sort,
	strat Strategy,
	limit int,
	fetch Fetcher[T],
	count Counter,
) (*Page[T], error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	items, err := fetch(ctx, FetchSpec{
		Selection: sel,
		Sort:      sort,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, &StoreUnavailableError{Cause: err}
	}

	// La consulta de total es independiente de la de filas; ambas son de solo
	// lectura y conmutan dentro de la petición.
	total, err := count(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Cause: err}
	}

	return assembleOffsetPage(items, page, limit, total, d, sel, strat), nil
}

package query

// ---------------- Página de resultados ----------------

// PageInfo es la metadata de paginación. Es una unión de dos variantes
// (CursorInfo | OffsetInfo): una página nunca lleva las dos a la vez, y eso
// se garantiza a nivel de tipo, no por convención.
type PageInfo interface {
	isPageInfo()
}

// CursorInfo es la metadata del modo cursor.
type CursorInfo struct {
	Limit       int    `json:"limit"`
	ItemCount   int    `json:"itemCount"`
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor,omitempty"`
}

func (CursorInfo) isPageInfo() {}

// OffsetInfo es la metadata del modo offset (camino legacy con total).
type OffsetInfo struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

func (OffsetInfo) isPageInfo() {}

// OptimizationMetrics compara campos pedidos vs disponibles vs devueltos.
// Es puramente derivada; viaja con la página para observabilidad.
type OptimizationMetrics struct {
	FieldsRequested  int      `json:"fieldsRequested"`
	FieldsAvailable  int      `json:"fieldsAvailable"`
	FieldsReturned   int      `json:"fieldsReturned"`
	ReductionPercent float64  `json:"reductionPercent"`
	RejectedFields   []string `json:"rejectedFields,omitempty"`
}

// PageMeta acompaña a toda página con la estrategia usada y sus métricas.
type PageMeta struct {
	PaginationType Mode                `json:"paginationType"`
	Reason         string              `json:"reason,omitempty"`
	Optimization   OptimizationMetrics `json:"optimizationMetrics"`
}

// Page es el resultado de un listado: los items proyectados más la metadata
// de la estrategia activa. Se construye por petición, se serializa y se
// descarta; nunca se persiste.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageInfo `json:"pagination"`
	Meta       PageMeta `json:"meta"`
}

// ---------------- Ensamblado ----------------

// buildMetrics deriva las métricas de optimización de una proyección.
// reducción = 1 - devueltos/disponibles, en porcentaje.
func buildMetrics(d *Descriptor, sel Selection) OptimizationMetrics {
	available := len(d.Fields)
	returned := len(sel.Fields)

	var reduction float64
	if available > 0 {
		reduction = (1 - float64(returned)/float64(available)) * 100
	}

	return OptimizationMetrics{
		FieldsRequested:  sel.Requested,
		FieldsAvailable:  available,
		FieldsReturned:   returned,
		ReductionPercent: reduction,
		RejectedFields:   sel.Rejected,
	}
}

// assembleCursorPage arma la variante cursor. Transformación pura.
func assembleCursorPage[T any](items []T, hasNext bool, nextCursor string, limit int, d *Descriptor, sel Selection, strat Strategy) *Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &Page[T]{
		Items: items,
		Pagination: CursorInfo{
			Limit:       limit,
			ItemCount:   len(items),
			HasNextPage: hasNext,
			NextCursor:  nextCursor,
		},
		Meta: PageMeta{
			PaginationType: strat.Mode,
			Reason:         strat.Reason,
			Optimization:   buildMetrics(d, sel),
		},
	}
}

// assembleOffsetPage arma la variante offset. Transformación pura.
func assembleOffsetPage[T any](items []T, page, limit, total int, d *Descriptor, sel Selection, strat Strategy) *Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Page[T]{
		Items: items,
		Pagination: OffsetInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
		},
		Meta: PageMeta{
			PaginationType: strat.Mode,
			Reason:         strat.Reason,
			Optimization:   buildMetrics(d, sel),
		},
	}
}

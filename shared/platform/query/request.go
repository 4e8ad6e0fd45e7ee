package query

// ---------------- Petición de listado ----------------

// ListRequest agrupa los parámetros de paginación que llegan del cliente.
// Cursor y Page son señales mutuamente excluyentes: si llegan ambas gana el
// cursor (ver DecideStrategy). Si no llega ninguna, se asume modo cursor
// desde el principio de la ordenación.
type ListRequest struct {
	Entity string
	Fields []string // parseado de ?fields=a,b,c; vacío = conjunto por defecto
	Sort   Sort     // campo vacío = ordenación por defecto del descriptor
	Limit  int      // 0 = límite por defecto
	Cursor string   // token opaco de la página anterior
	Page   int      // numeración 1-based; 0 = ausente
}

// Limits acota el tamaño de página. Se configura una vez en el arranque.
type Limits struct {
	Default         int // límite cuando el cliente no indica ninguno
	Max             int // techo duro; por encima se recorta, no se falla
	CursorThreshold int // por encima de esto, offset degrada y se fuerza cursor
}

// DefaultLimits son los valores de producción: páginas de 20, techo de 100,
// umbral de cambio a cursor en 50.
func DefaultLimits() Limits {
	return Limits{Default: 20, Max: 100, CursorThreshold: 50}
}

// Clamp normaliza un límite pedido por el cliente dentro de los topes.
// Pedir 1000 con Max=100 devuelve 100, nunca un error.
func (l Limits) Clamp(limit int) int {
	if limit <= 0 {
		return l.Default
	}
	if limit > l.Max {
		return l.Max
	}
	return limit
}

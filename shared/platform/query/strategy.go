package query

// ---------------- Selección de estrategia ----------------

// Mode identifica la estrategia de paginación activa.
type Mode string

const (
	ModeCursor Mode = "cursor"
	ModeOffset Mode = "offset"
)

// Strategy es la decisión de paginación más la razón legible para
// diagnóstico. Nunca lleva estado: se decide por petición.
type Strategy struct {
	Mode   Mode
	Reason string
}

// DecideStrategy decide cursor vs offset para una petición. Es una función
// pura y total: sin I/O, sin fallo posible, misma entrada -> misma salida.
//
// Orden de decisión (gana la primera regla que aplique):
//  1. Cursor explícito          -> cursor
//  2. Número de página explícito -> offset (camino legacy, conserva total)
//  3. Límite por encima del umbral -> cursor (offset degrada en ventanas grandes)
//  4. Por defecto               -> cursor
func DecideStrategy(req ListRequest, limits Limits) Strategy {
	switch {
	case req.Cursor != "":
		return Strategy{Mode: ModeCursor, Reason: "explicit cursor token present"}
	case req.Page > 0:
		return Strategy{Mode: ModeOffset, Reason: "explicit page number (legacy path, total preserved)"}
	case req.Limit > limits.CursorThreshold:
		return Strategy{Mode: ModeCursor, Reason: "requested limit exceeds offset threshold"}
	default:
		return Strategy{Mode: ModeCursor, Reason: "default strategy"}
	}
}

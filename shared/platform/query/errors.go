package query

import (
	"errors"
	"fmt"
)

// ---------- Errores del núcleo de listado ----------
//
// Los tres primeros son errores de cliente: se detectan y rechazan ANTES de
// tocar el almacén de datos. StoreUnavailableError es el único reintenable
// y el reintento es responsabilidad del llamador, nunca de este paquete.
var (
	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrMalformedCursor   = errors.New("malformed cursor")
)

// StoreUnavailableError envuelve un fallo del almacén de datos (caída,
// timeout) preservando la causa para diagnóstico. El llamador no necesita
// conocer los tipos de error nativos del driver.
type StoreUnavailableError struct {
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("record store unavailable: %v", e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Cause
}

// IsRetryable indica si el error admite reintento con backoff por parte
// del llamador.
func IsRetryable(err error) bool {
	var sErr *StoreUnavailableError
	return errors.As(err, &sErr)
}

// IsClientError indica si el error es culpa de la petición (HTTP 4xx) y no
// del servidor.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownEntityType) ||
		errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrMalformedCursor)
}

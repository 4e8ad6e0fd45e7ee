package query

import (
	"encoding/base64"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------- Codec de cursor ----------------
//
// El cursor codifica el par (valor de ordenación, id) de la última fila de
// la página anterior como token opaco y URL-safe. Codificar el mismo par dos
// veces produce el mismo token (determinismo exigido por cacheo y tests), y
// decodificar un token bien formado reproduce exactamente el par original.
//
// Formato interno, antes de base64 URL-safe sin padding:
//
//	<crc32>|<kind>|<id>|<valor>
//
// El primer segmento es un CRC32 (hex) del resto del payload: base64 sin
// padding tolera perder los bits finales, así que un token truncado podría
// decodificar "bien" a un ancla distinta; el checksum hace que cualquier
// truncamiento o manipulación falle en la verificación en vez de reanudar
// el recorrido desde una fila equivocada. El id va en medio porque tiene
// longitud fija; el valor puede contener '|' (strings arbitrarios) y por
// eso ocupa siempre el último segmento.
//
// Un valor de ordenación NULL se codifica con kind 'n' y valor vacío. Los
// NULL ordenan siempre al final (nulls last), en ambas direcciones; la
// política está fijada aquí y en el builder SQL, no en cada repo.

const (
	cursorKindTime   = "t" // time.Time en RFC3339Nano
	cursorKindString = "s"
	cursorKindInt    = "i"
	cursorKindFloat  = "f"
	cursorKindBool   = "b"
	cursorKindNull   = "n"
)

// EncodeCursor codifica (sortValue, id) en un token opaco. sortValue admite
// time.Time, *time.Time, string, int64/int, float64, bool y nil.
func EncodeCursor(sortValue interface{}, id uuid.UUID) (string, error) {
	var kind, raw string

	switch v := sortValue.(type) {
	case nil:
		kind, raw = cursorKindNull, ""
	case *time.Time:
		if v == nil {
			kind, raw = cursorKindNull, ""
		} else {
			kind, raw = cursorKindTime, v.UTC().Format(time.RFC3339Nano)
		}
	case time.Time:
		kind, raw = cursorKindTime, v.UTC().Format(time.RFC3339Nano)
	case string:
		kind, raw = cursorKindString, v
	case int:
		kind, raw = cursorKindInt, strconv.FormatInt(int64(v), 10)
	case int64:
		kind, raw = cursorKindInt, strconv.FormatInt(v, 10)
	case float64:
		kind, raw = cursorKindFloat, strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		kind, raw = cursorKindBool, strconv.FormatBool(v)
	default:
		return "", fmt.Errorf("unsupported cursor sort value type %T", sortValue)
	}

	payload := kind + "|" + id.String() + "|" + raw
	sum := crc32.ChecksumIEEE([]byte(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(sum), 16) + "|" + payload)), nil
}

// DecodeCursor decodifica un token producido por EncodeCursor. Cualquier
// token malformado, truncado o manipulado devuelve ErrMalformedCursor; el
// llamador debe tratarlo como error de cliente, nunca como fallo de servidor.
func DecodeCursor(token string) (interface{}, uuid.UUID, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}

	parts := strings.SplitN(string(decoded), "|", 4)
	if len(parts) != 4 {
		return nil, uuid.Nil, fmt.Errorf("%w: wrong segment count", ErrMalformedCursor)
	}
	sumRaw, kind, idRaw, raw := parts[0], parts[1], parts[2], parts[3]

	sum, err := strconv.ParseUint(sumRaw, 16, 32)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: bad checksum segment", ErrMalformedCursor)
	}
	payload := kind + "|" + idRaw + "|" + raw
	if uint32(sum) != crc32.ChecksumIEEE([]byte(payload)) {
		return nil, uuid.Nil, fmt.Errorf("%w: checksum mismatch", ErrMalformedCursor)
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: bad id segment", ErrMalformedCursor)
	}

	switch kind {
	case cursorKindNull:
		if raw != "" {
			return nil, uuid.Nil, fmt.Errorf("%w: null cursor carries a value", ErrMalformedCursor)
		}
		return nil, id, nil
	case cursorKindTime:
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("%w: bad time segment", ErrMalformedCursor)
		}
		return t, id, nil
	case cursorKindString:
		return raw, id, nil
	case cursorKindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("%w: bad int segment", ErrMalformedCursor)
		}
		return n, id, nil
	case cursorKindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("%w: bad float segment", ErrMalformedCursor)
		}
		return f, id, nil
	case cursorKindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("%w: bad bool segment", ErrMalformedCursor)
		}
		return b, id, nil
	default:
		return nil, uuid.Nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedCursor, kind)
	}
}

// matchesKind comprueba que el valor decodificado del cursor encaja con el
// Kind del campo de ordenación activo. Un cursor de otra entidad u otra
// ordenación se rechaza como malformado en vez de producir una página
// incoherente.
func matchesKind(sortValue interface{}, kind Kind, nullable bool) bool {
	if sortValue == nil {
		return nullable
	}
	switch kind {
	case KindTime:
		_, ok := sortValue.(time.Time)
		return ok
	case KindString:
		_, ok := sortValue.(string)
		return ok
	case KindInt:
		_, ok := sortValue.(int64)
		return ok
	case KindFloat:
		_, ok := sortValue.(float64)
		return ok
	case KindBool:
		_, ok := sortValue.(bool)
		return ok
	default:
		return false
	}
}

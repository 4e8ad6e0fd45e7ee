package query

import "strings"

// ---------------- Proyección de campos ----------------

// Selection es el conjunto validado de campos a hidratar: ordenado, sin
// duplicados y siempre subconjunto del allow-list del descriptor. Vive lo
// que dura la petición.
type Selection struct {
	// Fields son los campos a recuperar. Nunca vacío; siempre incluye el
	// campo identificador porque el cursor lo necesita aguas abajo.
	Fields []string
	// Rejected registra los campos pedidos que no pasaron el allow-list.
	// No son un error: un cliente desfasado degrada, no rompe.
	Rejected []string
	// Requested es cuántos campos distintos pidió el cliente.
	Requested int
	// Fallback indica que se usó el conjunto por defecto (petición vacía o
	// sin ningún campo válido).
	Fallback bool
}

// ParseFields parte el parámetro ?fields=a,b,c en una lista normalizada.
func ParseFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := strings.TrimSpace(p); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Project calcula la proyección segura para una entidad: deduplica la lista
// pedida, la interseca con el allow-list y garantiza que el resultado nunca
// es vacío (cae al conjunto por defecto) y siempre contiene el id.
//
// Project es idempotente: proyectar el resultado de una proyección devuelve
// lo mismo.
func Project(d *Descriptor, requested []string) Selection {
	if len(requested) == 0 {
		return Selection{
			Fields:   withIDField(d, d.DefaultFields),
			Fallback: true,
		}
	}

	seen := make(map[string]bool, len(requested))
	var kept, rejected []string
	distinct := 0

	for _, f := range requested {
		if seen[f] {
			continue
		}
		seen[f] = true
		distinct++
		if d.Allowed(f) {
			kept = append(kept, f)
		} else {
			rejected = append(rejected, f)
		}
	}

	if len(kept) == 0 {
		// Ningún campo válido: degradación silenciosa al conjunto por defecto.
		return Selection{
			Fields:    withIDField(d, d.DefaultFields),
			Rejected:  rejected,
			Requested: distinct,
			Fallback:  true,
		}
	}

	return Selection{
		Fields:    withIDField(d, kept),
		Rejected:  rejected,
		Requested: distinct,
	}
}

// withIDField antepone el campo identificador si no está ya en la lista.
func withIDField(d *Descriptor, fields []string) []string {
	for _, f := range fields {
		if f == d.IDField {
			out := make([]string, len(fields))
			copy(out, fields)
			return out
		}
	}
	out := make([]string, 0, len(fields)+1)
	out = append(out, d.IDField)
	out = append(out, fields...)
	return out
}

// Contains indica si la proyección incluye un campo.
func (s Selection) Contains(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// WithField devuelve la proyección con el campo añadido al final si no
// estaba ya. El modo cursor lo usa para garantizar que el campo de orden se
// hidrata aunque el cliente no lo pidiera: el ancla del siguiente cursor se
// lee de la última fila, y un ancla sin hidratar rompería el recorrido.
func (s Selection) WithField(field string) Selection {
	if s.Contains(field) {
		return s
	}
	out := s
	out.Fields = make([]string, 0, len(s.Fields)+1)
	out.Fields = append(out.Fields, s.Fields...)
	out.Fields = append(out.Fields, field)
	return out
}

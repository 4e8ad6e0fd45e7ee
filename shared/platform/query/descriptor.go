package query

import "fmt"

// ---------------- Tipos de campo ----------------

// Kind clasifica el valor de un campo. Gobierna cómo se codifica el cursor
// y cómo se interpreta el valor de ordenación al decodificarlo.
type Kind int

const (
	KindString Kind = iota
	KindTime
	KindInt
	KindFloat
	KindBool
)

// FieldSpec describe un campo expuesto de una entidad.
type FieldSpec struct {
	Kind Kind
	// Nullable indica que el campo puede ser NULL en el almacén. Los campos
	// anulables ordenan siempre al final (nulls last), en ambas direcciones.
	Nullable bool
	// Expensive marca campos desnormalizados o costosos de hidratar; nunca
	// forman parte del conjunto por defecto.
	Expensive bool
}

// ---------------- Sort ----------------

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "created_at", "title", "due_date"
	Desc  bool
}

// ---------------- Descriptor ----------------

// Descriptor es la metadata estática de un tipo de entidad: el allow-list de
// campos consultables, el conjunto mínimo por defecto y la ordenación por
// defecto. Se construye una vez en el arranque y no se muta en runtime.
type Descriptor struct {
	Entity  string
	Table   string // tabla SQL o colección Mongo
	IDField string // campo identificador, tie-break de toda ordenación

	// Fields es el allow-list: todo campo solicitable por un cliente externo.
	// Los campos internos de la entidad simplemente no aparecen aquí.
	Fields map[string]FieldSpec

	// DefaultFields es el subconjunto mínimo barato que se devuelve cuando el
	// cliente no pide campos (nunca se devuelve todo por accidente).
	DefaultFields []string

	DefaultSort Sort
}

// Allowed indica si el campo está en el allow-list.
func (d *Descriptor) Allowed(field string) bool {
	_, ok := d.Fields[field]
	return ok
}

// FieldKind devuelve el Kind de un campo permitido.
func (d *Descriptor) FieldKind(field string) (Kind, bool) {
	spec, ok := d.Fields[field]
	return spec.Kind, ok
}

// ---------------- Registry ----------------

// Registry mapea tipo de entidad -> Descriptor. Inmutable tras construcción:
// se crea una vez en main y se inyecta por referencia donde haga falta.
type Registry struct {
	descriptors map[string]*Descriptor
}

// NewRegistry construye el registro. Valida que cada descriptor sea
// coherente (id y defaults dentro del allow-list) porque un descriptor roto
// es un bug de arranque, no un error de petición.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		if _, dup := r.descriptors[d.Entity]; dup {
			return nil, fmt.Errorf("duplicate descriptor for entity %q", d.Entity)
		}
		if !d.Allowed(d.IDField) {
			return nil, fmt.Errorf("entity %q: id field %q missing from allow-list", d.Entity, d.IDField)
		}
		for _, f := range d.DefaultFields {
			if !d.Allowed(f) {
				return nil, fmt.Errorf("entity %q: default field %q missing from allow-list", d.Entity, f)
			}
		}
		if !d.Allowed(d.DefaultSort.Field) {
			return nil, fmt.Errorf("entity %q: default sort field %q missing from allow-list", d.Entity, d.DefaultSort.Field)
		}
		r.descriptors[d.Entity] = d
	}
	return r, nil
}

// MustRegistry es NewRegistry con panic; para wiring en main y tests.
func MustRegistry(descs ...*Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup devuelve el descriptor de un tipo de entidad.
// Devuelve ErrUnknownEntityType si no está registrado.
func (r *Registry) Lookup(entity string) (*Descriptor, error) {
	d, ok := r.descriptors[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entity)
	}
	return d, nil
}

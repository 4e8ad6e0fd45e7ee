package query

import (
	"fmt"
	"strings"

	"github.com/posalpro/posalpro/shared/utils"
)

// ---------------- Helpers de SQL para keyset ----------------
//
// Los repos SQL construyen sus consultas a mano (cada dialecto con su estilo
// de placeholder); estos helpers concentran la única parte delicada: el
// predicado de continuación del keyset y el ORDER BY con política de NULLs.
// Los nombres de campo que llegan aquí ya pasaron el allow-list del
// descriptor, por eso pueden interpolarse como identificadores.

// Placeholder genera el marcador posicional n-ésimo (1-based) del dialecto.
type Placeholder func(n int) string

// PlaceholderDollar es el estilo Postgres: $1, $2...
func PlaceholderDollar(n int) string { return fmt.Sprintf("$%d", n) }

// PlaceholderQuestion es el estilo SQLite/MySQL: ?
func PlaceholderQuestion(n int) string { return "?" }

// BuildKeysetClause genera el predicado de rango que continúa el escaneo
// estrictamente después de la fila ancla (k.SortValue, k.ID). argOffset es
// cuántos argumentos lleva ya la consulta (para numerar los placeholders).
//
// La ordenación total es (campo, id) con NULLs al final en ambas
// direcciones, así que hay dos casos:
//
//   - ancla con valor: filas con valor posterior, empates resueltos por id,
//     y todas las filas NULL (que ordenan después de cualquier valor);
//   - ancla NULL: solo quedan filas NULL, avanzando por id.
func BuildKeysetClause(k *Keyset, idField string, ph Placeholder, argOffset int) (string, []interface{}) {
	if k == nil {
		return "", nil
	}

	cmp := ">"
	if k.Desc {
		cmp = "<"
	}

	if k.SortValue == nil {
		clause := fmt.Sprintf("(%s IS NULL AND %s %s %s)",
			k.Field, idField, cmp, ph(argOffset+1))
		return clause, []interface{}{k.ID.String()}
	}

	clause := fmt.Sprintf("(%s %s %s OR (%s = %s AND %s %s %s) OR %s IS NULL)",
		k.Field, cmp, ph(argOffset+1),
		k.Field, ph(argOffset+2), idField, cmp, ph(argOffset+3),
		k.Field)
	return clause, []interface{}{k.SortValue, k.SortValue, k.ID.String()}
}

// BuildOrderBy genera el ORDER BY (campo, id) que hace la ordenación total y
// estable que el cursor necesita. NULLS LAST explícito: Postgres ordena
// NULLs al final en DESC pero al principio en ASC, y el cursor exige una
// única política.
func BuildOrderBy(sort Sort, idField string) string {
	dir := utils.Ternary(sort.Desc, "DESC", "ASC")
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, %s %s", sort.Field, dir, idField, dir)
}

// BuildSelectColumns genera la lista de columnas de la proyección.
func BuildSelectColumns(sel Selection) string {
	return strings.Join(sel.Fields, ", ")
}

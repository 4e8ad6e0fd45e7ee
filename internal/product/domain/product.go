package domain

import (
	"time"

	sharedBus "github.com/posalpro/posalpro/shared/platform/bus"
	"github.com/google/uuid"
)

// Product representa un artículo del catálogo. Campos omitempty para que los
// listados solo serialicen los campos hidratados. Description es un campo
// caro (texto largo) y por eso nunca entra en el conjunto por defecto.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	SKU         string     `json:"sku,omitempty"`
	Name        string     `json:"name,omitempty"`
	Category    string     `json:"category,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func (p *Product) PartitionKey() string {
	return p.ID.String()
}

// --- Métodos de dominio ---

func (p *Product) Activate() {
	active := true
	p.Active = &active
}

func (p *Product) Deactivate() {
	active := false
	p.Active = &active
}

// Discount aplica un descuento porcentual sobre el precio actual.
func (p *Product) Discount(percent float64) {
	if p.Price == nil || percent <= 0 || percent >= 100 {
		return
	}
	discounted := *p.Price * (1 - percent/100)
	p.Price = &discounted
}

// Verificación estática para asegurar que Product implementa la interfaz
var _ sharedBus.Keyer = (*Product)(nil)

package domain

import (
	"time"

	sharedBus "github.com/posalpro/posalpro/shared/platform/bus"
	"github.com/google/uuid"
)

type CustomerTier string

const (
	TierBronze   CustomerTier = "bronze"
	TierSilver   CustomerTier = "silver"
	TierGold     CustomerTier = "gold"
	TierPlatinum CustomerTier = "platinum"
)

type CustomerStatus string

const (
	CustomerProspect CustomerStatus = "prospect"
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

// Customer representa una cuenta cliente. Igual que Proposal, los campos no
// identificadores son omitempty para que los listados solo serialicen los
// campos hidratados.
type Customer struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name,omitempty"`
	Email     string         `json:"email,omitempty"`
	Tier      CustomerTier   `json:"tier,omitempty"`
	Industry  string         `json:"industry,omitempty"`
	Status    CustomerStatus `json:"status,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

func (c *Customer) PartitionKey() string {
	return c.ID.String()
}

// --- Métodos de dominio ---

func (c *Customer) Activate() {
	c.Status = CustomerActive
	now := time.Now().UTC()
	c.UpdatedAt = &now
}

func (c *Customer) Deactivate() {
	c.Status = CustomerInactive
	now := time.Now().UTC()
	c.UpdatedAt = &now
}

// Upgrade sube el tier si el nuevo es superior; devuelve si hubo cambio.
func (c *Customer) Upgrade(tier CustomerTier) bool {
	if tierRank(tier) <= tierRank(c.Tier) {
		return false
	}
	c.Tier = tier
	now := time.Now().UTC()
	c.UpdatedAt = &now
	return true
}

func tierRank(t CustomerTier) int {
	switch t {
	case TierBronze:
		return 1
	case TierSilver:
		return 2
	case TierGold:
		return 3
	case TierPlatinum:
		return 4
	default:
		return 0
	}
}

// Verificación estática para asegurar que Customer implementa la interfaz
var _ sharedBus.Keyer = (*Customer)(nil)

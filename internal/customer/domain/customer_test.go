package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomer_Upgrade(t *testing.T) {
	tests := []struct {
		name    string
		from    CustomerTier
		to      CustomerTier
		changed bool
		want    CustomerTier
	}{
		{name: "bronze a gold", from: TierBronze, to: TierGold, changed: true, want: TierGold},
		{name: "gold a silver no degrada", from: TierGold, to: TierSilver, changed: false, want: TierGold},
		{name: "mismo tier no cambia", from: TierSilver, to: TierSilver, changed: false, want: TierSilver},
		{name: "platinum es techo", from: TierPlatinum, to: TierGold, changed: false, want: TierPlatinum},
		{name: "tier desconocido no aplica", from: TierBronze, to: CustomerTier("diamond"), changed: false, want: TierBronze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Customer{Name: "Acme", Tier: tt.from}
			assert.Equal(t, tt.changed, c.Upgrade(tt.to))
			assert.Equal(t, tt.want, c.Tier)
			if tt.changed {
				assert.NotNil(t, c.UpdatedAt)
			}
		})
	}
}

func TestCustomer_ActivateDeactivate(t *testing.T) {
	c := &Customer{Name: "Acme", Status: CustomerProspect}

	c.Activate()
	assert.Equal(t, CustomerActive, c.Status)
	assert.NotNil(t, c.UpdatedAt)

	c.Deactivate()
	assert.Equal(t, CustomerInactive, c.Status)
}

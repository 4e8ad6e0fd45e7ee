package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func TestProduct_Discount(t *testing.T) {
	tests := []struct {
		name    string
		price   *float64
		percent float64
		want    *float64
	}{
		{name: "descuento normal", price: fptr(200), percent: 25, want: fptr(150)},
		{name: "sin precio no hace nada", price: nil, percent: 10, want: nil},
		{name: "porcentaje cero se ignora", price: fptr(100), percent: 0, want: fptr(100)},
		{name: "porcentaje negativo se ignora", price: fptr(100), percent: -5, want: fptr(100)},
		{name: "cien por cien se ignora", price: fptr(100), percent: 100, want: fptr(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{SKU: "SKU-1", Name: "Widget", Price: tt.price}
			p.Discount(tt.percent)
			if tt.want == nil {
				assert.Nil(t, p.Price)
				return
			}
			require.NotNil(t, p.Price)
			assert.InDelta(t, *tt.want, *p.Price, 0.001)
		})
	}
}

func TestProduct_ActivateDeactivate(t *testing.T) {
	p := &Product{SKU: "SKU-1", Name: "Widget"}

	p.Activate()
	require.NotNil(t, p.Active)
	assert.True(t, *p.Active)

	p.Deactivate()
	require.NotNil(t, p.Active)
	assert.False(t, *p.Active)
}

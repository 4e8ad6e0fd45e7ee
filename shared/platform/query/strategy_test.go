package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideStrategy_Order(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name     string
		req      ListRequest
		expected Mode
	}{
		{name: "cursor explícito", req: ListRequest{Cursor: "abc"}, expected: ModeCursor},
		{name: "cursor gana a page", req: ListRequest{Cursor: "abc", Page: 3}, expected: ModeCursor},
		{name: "page explícita", req: ListRequest{Page: 2}, expected: ModeOffset},
		{name: "page gana al umbral", req: ListRequest{Page: 2, Limit: 80}, expected: ModeOffset},
		{name: "límite grande fuerza cursor", req: ListRequest{Limit: 80}, expected: ModeCursor},
		{name: "límite en el umbral no fuerza nada", req: ListRequest{Limit: 50}, expected: ModeCursor},
		{name: "por defecto cursor", req: ListRequest{}, expected: ModeCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideStrategy(tt.req, limits)
			assert.Equal(t, tt.expected, got.Mode)
			assert.NotEmpty(t, got.Reason, "la decisión siempre lleva una razón legible")
		})
	}
}

func TestDecideStrategy_Deterministic(t *testing.T) {
	limits := DefaultLimits()
	req := ListRequest{Entity: "proposal", Page: 4, Limit: 10}

	first := DecideStrategy(req, limits)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DecideStrategy(req, limits))
	}
}

func TestLimits_Clamp(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "cero usa el defecto", limit: 0, expected: 20},
		{name: "negativo usa el defecto", limit: -5, expected: 20},
		{name: "dentro del rango", limit: 33, expected: 33},
		{name: "por encima del máximo recorta", limit: 1000, expected: 100},
		{name: "exactamente el máximo", limit: 100, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, limits.Clamp(tt.limit))
		})
	}
}

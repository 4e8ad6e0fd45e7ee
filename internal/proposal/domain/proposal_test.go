package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProposal_Overdue(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		due      *time.Time
		status   ProposalStatus
		expected bool
	}{
		{name: "sin fecha límite nunca vence", due: nil, status: ProposalSubmitted, expected: false},
		{name: "fecha pasada y pendiente", due: &past, status: ProposalSubmitted, expected: true},
		{name: "fecha futura", due: &future, status: ProposalSubmitted, expected: false},
		{name: "aprobada no vence", due: &past, status: ProposalApproved, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Proposal{Title: "Test", Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.expected, p.Overdue(now))
		})
	}
}

func TestProposal_Transitions(t *testing.T) {
	p := &Proposal{Title: "Acme renewal", Status: ProposalDraft}

	p.Submit()
	assert.Equal(t, ProposalSubmitted, p.Status)
	assert.NotNil(t, p.UpdatedAt)

	p.Approve()
	assert.Equal(t, ProposalApproved, p.Status)
}

func TestProposal_AnchorNullable(t *testing.T) {
	p := &Proposal{Title: "Sin fecha"}

	v, id := Anchor(p, "due_date")
	assert.Nil(t, v, "due_date NULL debe anclar como nulo")
	assert.Equal(t, p.ID, id)

	due := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	p.DueDate = &due
	v, _ = Anchor(p, "due_date")
	assert.Equal(t, due, v)
}

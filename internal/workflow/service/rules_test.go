package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/creditdesk/backend/internal/workflow/model"
)

func floatPtr(v float64) *float64 { return &v }

func rule(jurisdictionID uuid.UUID, min float64, max *float64, order int) model.ApprovalRule {
	return model.ApprovalRule{
		JurisdictionID: jurisdictionID,
		MinAmount:      min,
		MaxAmount:      max,
		StepOrder:      order,
	}
}

func TestResolveJurisdictions(t *testing.T) {
	analyst := uuid.New()
	manager := uuid.New()
	committee := uuid.New()

	registry := []model.ApprovalRule{
		rule(analyst, 0, nil, 1),
		rule(manager, 50_000, nil, 2),
		rule(committee, 250_000, nil, 3),
	}

	t.Run("Small Amount Needs One Jurisdiction", func(t *testing.T) {
		chain := ResolveJurisdictions(registry, 10_000)
		assert.Equal(t, []uuid.UUID{analyst}, chain)
	})

	t.Run("Mid Amount Needs Two Jurisdictions In Step Order", func(t *testing.T) {
		chain := ResolveJurisdictions(registry, 80_000)
		assert.Equal(t, []uuid.UUID{analyst, manager}, chain)
	})

	t.Run("Large Amount Needs Full Chain", func(t *testing.T) {
		chain := ResolveJurisdictions(registry, 1_000_000)
		assert.Equal(t, []uuid.UUID{analyst, manager, committee}, chain)
	})

	t.Run("Lower Bound Is Inclusive Upper Bound Is Exclusive", func(t *testing.T) {
		bounded := []model.ApprovalRule{
			rule(analyst, 0, floatPtr(50_000), 1),
			rule(manager, 50_000, nil, 2),
		}
		assert.Equal(t, []uuid.UUID{analyst}, ResolveJurisdictions(bounded, 49_999.99))
		assert.Equal(t, []uuid.UUID{manager}, ResolveJurisdictions(bounded, 50_000))
	})

	t.Run("No Matching Rule Yields Empty Chain", func(t *testing.T) {
		bounded := []model.ApprovalRule{
			rule(analyst, 1_000, floatPtr(5_000), 1),
		}
		assert.Empty(t, ResolveJurisdictions(bounded, 500))
	})

	t.Run("Duplicate Jurisdiction Keeps First Occurrence", func(t *testing.T) {
		overlapping := []model.ApprovalRule{
			rule(analyst, 0, nil, 1),
			rule(analyst, 50_000, nil, 2),
			rule(manager, 50_000, nil, 3),
		}
		chain := ResolveJurisdictions(overlapping, 60_000)
		assert.Equal(t, []uuid.UUID{analyst, manager}, chain)
	})

	t.Run("Equal Step Order Breaks Tie On Min Amount Then Name", func(t *testing.T) {
		a := rule(analyst, 10_000, nil, 1)
		a.Jurisdiction = &model.JurisdictionRole{Name: "Credit Analyst"}
		b := rule(manager, 0, nil, 1)
		b.Jurisdiction = &model.JurisdictionRole{Name: "Credit Manager"}
		c := rule(committee, 10_000, nil, 1)
		c.Jurisdiction = &model.JurisdictionRole{Name: "Credit Committee"}

		chain := ResolveJurisdictions([]model.ApprovalRule{a, b, c}, 20_000)
		assert.Equal(t, []uuid.UUID{manager, committee, analyst}, chain)
	})

	t.Run("Empty Registry Yields Empty Chain", func(t *testing.T) {
		assert.Empty(t, ResolveJurisdictions(nil, 10_000))
	})
}

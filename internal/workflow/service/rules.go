package service

import (
	"sort"

	"github.com/google/uuid"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// ResolveJurisdictions determines the ordered jurisdiction chain for a
// requested amount. Matching rules cover the amount with their half-open
// [min, max) range and are ordered by StepOrder ascending, with MinAmount
// ascending and then jurisdiction name as deterministic tie-breaks. When
// several matching rules name the same jurisdiction, only its first
// occurrence is kept.
func ResolveJurisdictions(rules []model.ApprovalRule, amount float64) []uuid.UUID {
	matched := make([]model.ApprovalRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Matches(amount) {
			matched = append(matched, rule)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].StepOrder != matched[j].StepOrder {
			return matched[i].StepOrder < matched[j].StepOrder
		}
		if matched[i].MinAmount != matched[j].MinAmount {
			return matched[i].MinAmount < matched[j].MinAmount
		}
		return ruleJurisdictionName(&matched[i]) < ruleJurisdictionName(&matched[j])
	})

	seen := make(map[uuid.UUID]bool, len(matched))
	chain := make([]uuid.UUID, 0, len(matched))
	for _, rule := range matched {
		if seen[rule.JurisdictionID] {
			continue
		}
		seen[rule.JurisdictionID] = true
		chain = append(chain, rule.JurisdictionID)
	}
	return chain
}

func ruleJurisdictionName(rule *model.ApprovalRule) string {
	if rule.Jurisdiction != nil {
		return rule.Jurisdiction.Name
	}
	return rule.JurisdictionID.String()
}

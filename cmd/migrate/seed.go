package main

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// seedReferenceData inserts a default jurisdiction registry and routing rule
// set on an empty database. Existing reference data is left untouched so
// role administration stays authoritative after first boot.
func seedReferenceData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.JurisdictionRole{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("jurisdiction registry already populated, skipping seed")
		return nil
	}

	analyst := model.JurisdictionRole{Name: "Credit Analyst", Description: "First-line financial and risk analysis"}
	manager := model.JurisdictionRole{Name: "Credit Manager", Description: "Managerial approval of credit exposure"}
	committee := model.JurisdictionRole{Name: "Credit Committee", Description: "Committee approval for large exposures"}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, jurisdiction := range []*model.JurisdictionRole{&analyst, &manager, &committee} {
			if err := tx.Create(jurisdiction).Error; err != nil {
				return err
			}
		}

		rules := []model.ApprovalRule{
			// Every request goes through the analyst first.
			{JurisdictionID: analyst.ID, MinAmount: 0, MaxAmount: nil, StepOrder: 1},
			// Manager signs off from 50k upward.
			{JurisdictionID: manager.ID, MinAmount: 50_000, MaxAmount: nil, StepOrder: 2},
			// Committee decides everything from 250k upward.
			{JurisdictionID: committee.ID, MinAmount: 250_000, MaxAmount: nil, StepOrder: 3},
		}
		for i := range rules {
			if err := tx.Create(&rules[i]).Error; err != nil {
				return err
			}
		}

		log.WithField("rules", len(rules)).Info("seeded jurisdiction registry and routing rules")
		return nil
	})
}

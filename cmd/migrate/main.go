package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/creditdesk/backend/internal/config"
	"github.com/creditdesk/backend/internal/database"
	"github.com/creditdesk/backend/internal/workflow/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		_ = database.Close(db)
	}()

	err = db.AutoMigrate(
		&model.JurisdictionRole{},
		&model.ApprovalRule{},
		&model.CreditLimitRequest{},
		&model.WorkflowOrder{},
		&model.WorkflowStepDetail{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := seedReferenceData(db); err != nil {
		log.Fatalf("failed to seed reference data: %v", err)
	}

	log.Info("database migration completed successfully")
}

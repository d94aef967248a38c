package database

import (
	"fmt"

	"brokerage/server/internal/models"
)

// RunMigrations creates or updates the record tables.
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.PropertyRecord{}, &models.ClientRecord{}, &models.LeadRecord{}); err != nil {
		return fmt.Errorf("failed to migrate record tables: %w", err)
	}

	// Create spatial index on coordinates
	if err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`).Error; err != nil {
		return fmt.Errorf("failed to create coordinates index: %w", err)
	}

	if err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
	`).Error; err != nil {
		return fmt.Errorf("failed to create lead status index: %w", err)
	}

	return nil
}

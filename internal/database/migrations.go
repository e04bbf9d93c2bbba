package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/task-tracker/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by owner-scoped task queries
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		name    string
		columns string
	}{
		// Active list and history filter on owner + state
		{"idx_tasks_owner_completed", "owner_id, completed"},
		// History ordering and the completion histogram
		{"idx_tasks_owner_completed_at", "owner_id, completed_at"},
		{"idx_tasks_due_date", "due_date"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(&models.Task{}, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on tasks(%s)", idx.name, idx.columns)
	}

	return nil
}

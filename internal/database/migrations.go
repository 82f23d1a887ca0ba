package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type secondaryIndex struct {
	table   string
	name    string
	columns string
}

// Composite indexes backing the scoped task listing and the admin count.
var secondaryIndexes = []secondaryIndex{
	{"tasks", "idx_tasks_team_status", "team_id, status"},
	{"tasks", "idx_tasks_team_priority", "team_id, priority"},
	{"tasks", "idx_tasks_team_created_at", "team_id, created_at"},
	{"tasks", "idx_tasks_due_date", "due_date"},
	{"team_memberships", "idx_team_memberships_team_role", "team_id, role"},
	{"comments", "idx_comments_task_created_at", "task_id, created_at"},
}

// AddIndexes creates secondary indexes that are not expressed in model tags.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range secondaryIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}

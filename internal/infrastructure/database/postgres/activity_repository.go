package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	"it-asset-dashboard/internal/infrastructure/database/postgres/models"

	"gorm.io/datatypes"
)

type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) domainActivity.Repository {
	return &ActivityRepository{db: db}
}

type activityRow struct {
	models.ActivityLogModel
	Username *string
}

func (r *ActivityRepository) Write(ctx context.Context, e *domainActivity.Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	dbModel := &models.ActivityLogModel{
		UserID:    e.UserID,
		Action:    string(e.Action),
		Table:     e.TableName,
		RecordID:  e.RecordID,
		Details:   e.Details,
		Timestamp: e.Timestamp,
	}
	if e.Snapshot != nil {
		raw, err := json.Marshal(e.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode activity snapshot: %w", err)
		}
		dbModel.Snapshot = datatypes.JSON(raw)
	}

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}

	e.ID = dbModel.ID
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, page, pageSize int) ([]*domainActivity.Entry, int64, error) {
	var total int64
	if err := r.db.DB.WithContext(ctx).Model(&models.ActivityLogModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	limit, offset := pageBounds(page, pageSize)

	var rows []activityRow
	err := r.db.DB.WithContext(ctx).
		Table("activity_logs").
		Select("activity_logs.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = activity_logs.user_id").
		Order("activity_logs.timestamp DESC, activity_logs.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	entries := make([]*domainActivity.Entry, len(rows))
	for i, row := range rows {
		entry := &domainActivity.Entry{
			ID:        row.ID,
			UserID:    row.UserID,
			Username:  row.Username,
			Action:    domainActivity.Action(row.Action),
			TableName: row.Table,
			RecordID:  row.RecordID,
			Details:   row.Details,
			Timestamp: row.Timestamp,
		}
		if len(row.Snapshot) > 0 {
			entry.Snapshot = json.RawMessage(row.Snapshot)
		}
		entries[i] = entry
	}

	return entries, total, nil
}

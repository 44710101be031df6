package activity

import (
	"context"
	"time"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"
)

type ActivityResponse struct {
	LogID     uint      `json:"LogID"`
	UserID    *uint     `json:"UserID"`
	Username  *string   `json:"Username"`
	Action    string    `json:"Action"`
	TableName string    `json:"TableName"`
	RecordID  uint      `json:"RecordID"`
	Details   string    `json:"Details"`
	Snapshot  any       `json:"Snapshot,omitempty"`
	Timestamp time.Time `json:"Timestamp"`
}

type ActivityListResponse struct {
	Logs       []ActivityResponse `json:"logs"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type ListRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// Service lists the activity log, newest first.
type Service struct {
	repo domainActivity.Repository
}

func NewService(repo domainActivity.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req *ListRequest) (*ActivityListResponse, error) {
	page, pageSize := 1, 50
	if req != nil {
		if err := utils.ValidateStruct(req); err != nil {
			return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid pagination", err)
		}
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 {
			pageSize = req.PageSize
		}
	}

	entries, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	logs := make([]ActivityResponse, len(entries))
	for i, e := range entries {
		logs[i] = ActivityResponse{
			LogID:     e.ID,
			UserID:    e.UserID,
			Username:  e.Username,
			Action:    string(e.Action),
			TableName: e.TableName,
			RecordID:  e.RecordID,
			Details:   e.Details,
			Snapshot:  e.Snapshot,
			Timestamp: e.Timestamp,
		}
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &ActivityListResponse{
		Logs:       logs,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

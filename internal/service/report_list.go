package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"collectbook/internal/clients"
)

// ReportStatusService reads report statuses back out of Redis for the
// requesting collector.
type ReportStatusService struct {
	redis *clients.RedisClient
}

func NewReportStatusService(redis *clients.RedisClient) *ReportStatusService {
	return &ReportStatusService{redis: redis}
}

func (s *ReportStatusService) GetReports(ctx context.Context, collectorID string) ([]any, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	keys, err := s.redis.SMembers(ctx, reportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get report keys: %w", err)
	}

	var statuses []ReportStatus
	for _, key := range keys {
		data, err := s.redis.Get(ctx, key)
		if err != nil {
			continue
		}

		var status ReportStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}

		if status.CollectorID == collectorID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	var reports []any
	for _, status := range statuses {
		reports = append(reports, statusMap(status))
	}
	return reports, nil
}

func (s *ReportStatusService) GetReport(ctx context.Context, reportID, collectorID string) (any, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	data, err := s.redis.Get(ctx, reportID)
	if err != nil {
		return nil, errors.New("report not found")
	}

	var status ReportStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to parse report status: %w", err)
	}

	if status.CollectorID != collectorID {
		return nil, errors.New("report not found")
	}

	return statusMap(status), nil
}

func statusMap(status ReportStatus) map[string]any {
	return map[string]any{
		"key":          status.Key,
		"type":         status.Type,
		"collector_id": status.CollectorID,
		"progress":     status.Progress,
		"file_url":     status.FileURL,
		"error":        status.Error,
		"filters":      status.Filters,
		"created_at":   humanizeAgo(status.Created),
	}
}

func humanizeAgo(t time.Time) string {
	now := time.Now()
	if t.After(now) {
		return "just now"
	}

	diff := now.Sub(t)
	minutes := int(diff.Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
	}
	return t.Format("02.01.2006 15:04")
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

package clients

import (
	"context"
	"fmt"

	ws "collectbook/internal/transport/websocket"
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) NotifyReportProgress(
	ctx context.Context,
	collectorID string,
	reportID string,
	progress float64,
	stage string,
) error {
	if c.hub == nil {
		return nil
	}

	channel := fmt.Sprintf("notify_collector_of_report_progress#%s", collectorID)
	data := map[string]any{
		"id":       reportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Broadcast(collectorID, &ws.Message{
		Type:    "report_progress",
		Channel: channel,
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyReportComplete(
	ctx context.Context,
	collectorID string,
	reportID string,
	url string,
	filename string,
) error {
	if c.hub == nil {
		return nil
	}

	channel := fmt.Sprintf("notify_collector_when_report_complete#%s", collectorID)
	c.hub.Broadcast(collectorID, &ws.Message{
		Type:    "report_complete",
		Channel: channel,
		Data: map[string]any{
			"id":           reportID,
			"url":          url,
			"filename":     filename,
			"collector_id": collectorID,
		},
	})
	return nil
}

// NotifyReportFailed notifies a collector that a report failed with the provided error message.
func (c *WebSocketClient) NotifyReportFailed(ctx context.Context, collectorID string, reportID string, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	channel := fmt.Sprintf("notify_collector_when_report_failed#%s", collectorID)
	c.hub.Broadcast(collectorID, &ws.Message{
		Type:    "report_failed",
		Channel: channel,
		Data: map[string]any{
			"id":           reportID,
			"message":      errMsg,
			"collector_id": collectorID,
		},
	})
	return nil
}

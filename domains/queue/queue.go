package queue

import (
	"context"

	"github.com/AzielCF/telebridge/pkg/botmonitor"
	"github.com/AzielCF/telebridge/pkg/msgworker"
)

const StatusQueued = "queued"

type EnqueueRequest struct {
	Links []string `json:"links" form:"links"`
}

type EnqueueResponse struct {
	OK         bool   `json:"ok"`
	Status     string `json:"status"`
	LinksAdded int    `json:"links_added"`
}

type IQueueUsecase interface {
	Enqueue(ctx context.Context, request EnqueueRequest) (response EnqueueResponse, err error)
	Stats() msgworker.WorkerStats
	// Recent reports the outcome of the latest relayed links.
	Recent() botmonitor.Stats
}

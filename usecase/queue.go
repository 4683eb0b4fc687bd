package usecase

import (
	"context"
	"errors"
	"time"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainForward "github.com/AzielCF/telebridge/domains/forward"
	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	"github.com/AzielCF/telebridge/pkg/botmonitor"
	pkgError "github.com/AzielCF/telebridge/pkg/error"
	"github.com/AzielCF/telebridge/pkg/msgworker"
	"github.com/AzielCF/telebridge/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceQueue struct {
	auth    domainAuth.IAuthUsecase
	forward domainForward.IForwardUsecase
	worker  *msgworker.SequentialWorker
	monitor *botmonitor.Monitor
}

// NewQueueService wires the relay queue. monitor may be nil.
func NewQueueService(auth domainAuth.IAuthUsecase, forward domainForward.IForwardUsecase, worker *msgworker.SequentialWorker, monitor *botmonitor.Monitor) domainQueue.IQueueUsecase {
	return &serviceQueue{
		auth:    auth,
		forward: forward,
		worker:  worker,
		monitor: monitor,
	}
}

func (service *serviceQueue) Enqueue(ctx context.Context, request domainQueue.EnqueueRequest) (response domainQueue.EnqueueResponse, err error) {
	if !service.auth.IsLoggedIn() {
		return response, domainAuth.ErrNotLoggedIn
	}
	if err = validations.ValidateEnqueue(ctx, request); err != nil {
		return response, err
	}

	jobs := make([]msgworker.Job, 0, len(request.Links))
	for _, link := range request.Links {
		id := uuid.NewString()
		jobs = append(jobs, msgworker.Job{
			ID:      id,
			Key:     link,
			Handler: service.handler(id, link),
		})
	}
	added := service.worker.Enqueue(jobs...)
	logrus.Infof("[QUEUE] %d link(s) queued", added)

	return domainQueue.EnqueueResponse{OK: true, Status: domainQueue.StatusQueued, LinksAdded: added}, nil
}

func (service *serviceQueue) Stats() msgworker.WorkerStats {
	return service.worker.Stats()
}

func (service *serviceQueue) Recent() botmonitor.Stats {
	return service.monitor.GetStats()
}

// handler records the pipeline outcome; errors are returned so the worker counts and logs them.
func (service *serviceQueue) handler(jobID, link string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logrus.Infof("[QUEUE] processing %s", link)
		started := time.Now()
		result, err := service.forward.Forward(ctx, link)

		event := botmonitor.Event{
			JobID:      jobID,
			Link:       link,
			Kind:       string(result.Kind),
			Size:       result.Size,
			DurationMs: time.Since(started).Milliseconds(),
			Status:     botmonitor.StatusOK,
		}
		if err != nil {
			event.Status = botmonitor.StatusError
			event.Error = err.Error()
			var generic pkgError.GenericError
			if errors.As(err, &generic) {
				event.ErrCode = generic.ErrCode()
			}
		}
		service.monitor.Record(event)

		if err != nil {
			return err
		}
		logrus.Infof("[QUEUE] %s: %s", link, result.Message)
		return nil
	}
}

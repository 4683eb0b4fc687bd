package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainForward "github.com/AzielCF/telebridge/domains/forward"
	domainQueue "github.com/AzielCF/telebridge/domains/queue"
	"github.com/AzielCF/telebridge/pkg/botmonitor"
	"github.com/AzielCF/telebridge/pkg/msgworker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingForward struct {
	mu    sync.Mutex
	links []string
	err   error
}

func (r *recordingForward) Forward(ctx context.Context, link string) (domainForward.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, link)
	return domainForward.Result{Link: link, Message: "photo forwarded (0.01 MiB)"}, r.err
}

func (r *recordingForward) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links...)
}

func TestQueue_RequiresLogin(t *testing.T) {
	worker := msgworker.NewSequentialWorker()
	svc := NewQueueService(NewLoginFlow(&fakeUserGateway{}), &recordingForward{}, worker, nil)

	_, err := svc.Enqueue(context.Background(), domainQueue.EnqueueRequest{})
	assert.ErrorIs(t, err, domainAuth.ErrNotLoggedIn)
	assert.EqualError(t, err, "not logged in")
}

func TestQueue_EnqueueRunsInOrder(t *testing.T) {
	flow := NewLoginFlow(&fakeUserGateway{authorized: true})
	_, err := flow.Restore(context.Background())
	require.NoError(t, err)

	worker := msgworker.NewSequentialWorker()
	worker.Start(context.Background())
	t.Cleanup(worker.Stop)

	fwd := &recordingForward{err: &domainForward.NoMediaAttachedError{}}
	monitor := botmonitor.New(10)
	svc := NewQueueService(flow, fwd, worker, monitor)

	_, err = svc.Enqueue(context.Background(), domainQueue.EnqueueRequest{Links: []string{}})
	assert.EqualError(t, err, "no links provided")

	links := []string{"https://t.me/a/1", "https://t.me/b/2", "https://t.me/c/3/3"}
	resp, err := svc.Enqueue(context.Background(), domainQueue.EnqueueRequest{Links: links})
	require.NoError(t, err)
	assert.Equal(t, domainQueue.EnqueueResponse{OK: true, Status: "queued", LinksAdded: 3}, resp)

	assert.Eventually(t, func() bool { return len(fwd.seen()) == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, links, fwd.seen())
	assert.Eventually(t, func() bool { return svc.Stats().TotalFailed == 3 }, time.Second, 5*time.Millisecond)

	recent := svc.Recent()
	assert.Equal(t, int64(3), recent.TotalErrors)
	require.Len(t, recent.RecentEvents, 3)
	assert.Equal(t, "NO_MEDIA_ATTACHED", recent.RecentEvents[0].ErrCode)
	assert.NotEmpty(t, recent.RecentEvents[0].JobID)
}

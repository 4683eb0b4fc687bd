package usecase

import (
	"context"
	"errors"
	"os"
	"testing"

	domainForward "github.com/AzielCF/telebridge/domains/forward"
	"github.com/AzielCF/telebridge/pkg/mediastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "https://t.me/examplechannel/42"

func newForwardFixture(t *testing.T, source *fakeSource, relay *fakeRelay, limit int64) (domainForward.IForwardUsecase, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := mediastore.New(dir)
	require.NoError(t, err)
	return NewForwardService(source, relay, store, limit), dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifact may outlive the pipeline run")
}

func TestForward_Success(t *testing.T) {
	source := &fakeSource{
		msg: &domainForward.FetchedMessage{
			ID: 42, Text: "caption", HasMedia: true, Kind: domainForward.MediaKindVideo,
			FileName: "clip.mp4", MimeType: "video/mp4",
		},
		payload: []byte("0123456789"),
	}
	relay := &fakeRelay{}
	svc, dir := newForwardFixture(t, source, relay, 1024)

	result, err := svc.Forward(context.Background(), testLink)
	require.NoError(t, err)

	assert.Equal(t, domainForward.MediaKindVideo, result.Kind)
	assert.Equal(t, int64(10), result.Size)
	assert.Equal(t, "video forwarded (0.00 MiB)", result.Message)

	require.Len(t, relay.uploads, 1)
	assert.Equal(t, "caption", relay.uploads[0].Caption)
	assert.Equal(t, "clip.mp4", relay.uploads[0].FileName)
	assert.Equal(t, "video/mp4", relay.uploads[0].MimeType)
	assert.Equal(t, []byte("0123456789"), relay.contents[0])
	assertDirEmpty(t, dir)
}

func TestForward_InvalidLink(t *testing.T) {
	source := &fakeSource{}
	svc, _ := newForwardFixture(t, source, &fakeRelay{}, 1024)

	_, err := svc.Forward(context.Background(), "https://example.com/x/1")
	var formatErr *domainForward.InvalidLinkFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestForward_NoMediaCreatesNoFile(t *testing.T) {
	source := &fakeSource{msg: &domainForward.FetchedMessage{ID: 42, Text: "just text"}}
	relay := &fakeRelay{}
	svc, dir := newForwardFixture(t, source, relay, 1024)

	_, err := svc.Forward(context.Background(), testLink)

	var noMedia *domainForward.NoMediaAttachedError
	require.ErrorAs(t, err, &noMedia)
	assert.Equal(t, "no media. text: just text", err.Error())
	assert.Zero(t, source.downloads)
	assert.Empty(t, relay.uploads)
	assertDirEmpty(t, dir)
}

func TestForward_MessageNotFound(t *testing.T) {
	source := &fakeSource{fetchErr: domainForward.ErrMessageNotFound}
	svc, _ := newForwardFixture(t, source, &fakeRelay{}, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	var notFound *domainForward.MessageNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "@examplechannel", notFound.Chat)
	assert.Equal(t, 42, notFound.MessageID)
}

func TestForward_FetchFailure(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("flood wait")}
	svc, _ := newForwardFixture(t, source, &fakeRelay{}, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	var fetchErr *domainForward.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestForward_OversizeDeletesFile(t *testing.T) {
	source := &fakeSource{
		msg:     &domainForward.FetchedMessage{ID: 42, HasMedia: true, Kind: domainForward.MediaKindDocument},
		payload: make([]byte, 64),
	}
	relay := &fakeRelay{}
	svc, dir := newForwardFixture(t, source, relay, 16)

	_, err := svc.Forward(context.Background(), testLink)

	var tooLarge *domainForward.FileTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(16), tooLarge.Limit)
	assert.Greater(t, tooLarge.Size, int64(16))
	assert.Empty(t, relay.uploads)
	assertDirEmpty(t, dir)
}

func TestForward_DeclaredOversizeSkipsDownload(t *testing.T) {
	source := &fakeSource{
		msg: &domainForward.FetchedMessage{ID: 42, HasMedia: true, Kind: domainForward.MediaKindPhoto, DeclaredSize: 4096},
	}
	svc, dir := newForwardFixture(t, source, &fakeRelay{}, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	assert.ErrorIs(t, err, domainForward.ErrFileTooLarge)
	assert.Zero(t, source.downloads)
	assertDirEmpty(t, dir)
}

func TestForward_DownloadFailureDeletesFile(t *testing.T) {
	source := &fakeSource{
		msg:     &domainForward.FetchedMessage{ID: 42, HasMedia: true, Kind: domainForward.MediaKindDocument},
		payload: []byte("partial"),
		dlErr:   errors.New("connection reset"),
	}
	svc, dir := newForwardFixture(t, source, &fakeRelay{}, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	var fetchErr *domainForward.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assertDirEmpty(t, dir)
}

func TestForward_RelayFailureStillDeletesFile(t *testing.T) {
	source := &fakeSource{
		msg:     &domainForward.FetchedMessage{ID: 42, HasMedia: true, Kind: domainForward.MediaKindPhoto},
		payload: []byte("jpeg"),
	}
	relay := &fakeRelay{err: errors.New("bot blocked")}
	svc, dir := newForwardFixture(t, source, relay, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	var fwdErr *domainForward.ForwardError
	require.ErrorAs(t, err, &fwdErr)
	assert.EqualError(t, fwdErr.Err, "bot blocked")
	assertDirEmpty(t, dir)
}

func TestForward_PanicBecomesUnhandledError(t *testing.T) {
	svc, _ := newForwardFixture(t, &fakeSource{panicOn: true}, &fakeRelay{}, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	var unhandled *domainForward.UnhandledPipelineError
	require.ErrorAs(t, err, &unhandled)
	assert.Equal(t, testLink, unhandled.Link)
}

func TestForward_PanicDuringDownloadDeletesFile(t *testing.T) {
	source := &fakeSource{
		msg:              &domainForward.FetchedMessage{ID: 42, HasMedia: true, Kind: domainForward.MediaKindDocument},
		payload:          []byte("partial"),
		panicMidDownload: true,
	}
	dir := t.TempDir()
	store, err := mediastore.New(dir)
	require.NoError(t, err)
	svc := NewForwardService(source, &fakeRelay{}, store, 1024)

	_, err = svc.Forward(context.Background(), testLink)
	var unhandled *domainForward.UnhandledPipelineError
	require.ErrorAs(t, err, &unhandled)
	assert.Contains(t, err.Error(), "downloader exploded")

	assertDirEmpty(t, dir)
	assert.Empty(t, store.InFlight())
}

func TestForward_CaptionEntitiesReachRelay(t *testing.T) {
	formatting := []string{"bold 0-4"}
	source := &fakeSource{
		msg: &domainForward.FetchedMessage{
			ID: 42, Text: "bold caption", Entities: formatting, HasMedia: true, Kind: domainForward.MediaKindPhoto,
		},
		payload: []byte("jpeg"),
	}
	relay := &fakeRelay{}
	svc, _ := newForwardFixture(t, source, relay, 1024)

	_, err := svc.Forward(context.Background(), testLink)
	require.NoError(t, err)
	require.Len(t, relay.uploads, 1)
	assert.Equal(t, formatting, relay.uploads[0].CaptionEntities)
}

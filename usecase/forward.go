package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	domainForward "github.com/AzielCF/telebridge/domains/forward"
	"github.com/AzielCF/telebridge/pkg/mediastore"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

type serviceForward struct {
	source      domainForward.SourceGateway
	relay       domainForward.RelayGateway
	store       *mediastore.Store
	maxFileSize int64
}

func NewForwardService(source domainForward.SourceGateway, relay domainForward.RelayGateway, store *mediastore.Store, maxFileSize int64) domainForward.IForwardUsecase {
	return &serviceForward{
		source:      source,
		relay:       relay,
		store:       store,
		maxFileSize: maxFileSize,
	}
}

// Forward runs one link through parse, fetch, download and relay. The
// downloaded artifact never outlives the call.
func (service *serviceForward) Forward(ctx context.Context, link string) (result domainForward.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domainForward.UnhandledPipelineError{Link: link, Cause: r}
		}
	}()

	ref, err := domainForward.ParseLink(link)
	if err != nil {
		return result, err
	}

	msg, err := service.fetch(ctx, ref)
	if err != nil {
		return result, err
	}

	artifact, err := service.download(ctx, msg)
	if err != nil {
		return result, err
	}
	defer func() {
		_ = service.store.Release(artifact.Path)
	}()

	upload := domainForward.Upload{
		Path:            artifact.Path,
		Caption:         msg.Text,
		CaptionEntities: msg.Entities,
		Kind:            msg.Kind,
		FileName:        msg.FileName,
		MimeType:        msg.MimeType,
	}
	if err := service.relay.SendFile(ctx, upload); err != nil {
		return result, &domainForward.ForwardError{Err: err}
	}

	result = domainForward.Result{
		Link:    link,
		Kind:    msg.Kind,
		Size:    artifact.Size,
		Message: fmt.Sprintf("%s forwarded (%s MiB)", msg.Kind, domainForward.MiB(artifact.Size)),
	}
	logrus.WithFields(logrus.Fields{
		"link": link,
		"kind": msg.Kind,
		"size": humanize.IBytes(uint64(artifact.Size)),
	}).Info("[FORWARD] " + result.Message)
	return result, nil
}

func (service *serviceForward) fetch(ctx context.Context, ref domainForward.ParsedReference) (*domainForward.FetchedMessage, error) {
	msg, err := service.source.FetchMessage(ctx, ref)
	switch {
	case errors.Is(err, domainForward.ErrMessageNotFound):
		return nil, &domainForward.MessageNotFoundError{Chat: ref.Chat(), MessageID: ref.MessageID}
	case err != nil:
		var noMedia *domainForward.NoMediaAttachedError
		if errors.As(err, &noMedia) {
			return nil, err
		}
		return nil, &domainForward.FetchError{Err: err}
	case msg == nil:
		return nil, &domainForward.MessageNotFoundError{Chat: ref.Chat(), MessageID: ref.MessageID}
	case !msg.HasMedia:
		return nil, &domainForward.NoMediaAttachedError{Text: msg.Text}
	}
	return msg, nil
}

func (service *serviceForward) download(ctx context.Context, msg *domainForward.FetchedMessage) (artifact domainForward.Artifact, err error) {
	if msg.DeclaredSize > service.maxFileSize {
		return artifact, &domainForward.FileTooLargeError{Size: msg.DeclaredSize, Limit: service.maxFileSize}
	}

	f, err := service.store.Reserve(msg.FileName)
	if err != nil {
		return artifact, &domainForward.FetchError{Err: err}
	}
	path := f.Name()

	// the file is handed to the caller only on success; every other exit,
	// a panic included, removes it here
	handedOff := false
	defer func() {
		if !handedOff {
			_ = f.Close()
			_ = service.store.Release(path)
		}
	}()

	w := &cappedWriter{w: f, limit: service.maxFileSize}
	dlErr := service.source.DownloadMedia(ctx, msg, w)
	closeErr := f.Close()

	switch {
	case w.exceeded || errors.Is(dlErr, domainForward.ErrFileTooLarge):
		return artifact, &domainForward.FileTooLargeError{Size: w.observed(), Limit: service.maxFileSize}
	case dlErr != nil:
		return artifact, &domainForward.FetchError{Err: dlErr}
	case closeErr != nil:
		return artifact, &domainForward.FetchError{Err: closeErr}
	}

	handedOff = true
	logrus.Debugf("[FORWARD] downloaded %s to %s", humanize.IBytes(uint64(w.written)), path)
	return domainForward.Artifact{Path: path, Size: w.written}, nil
}

// cappedWriter stops accepting bytes once limit is crossed, which makes
// the downloader abort early.
type cappedWriter struct {
	w        io.Writer
	limit    int64
	written  int64
	rejected int64
	exceeded bool
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	if c.written+int64(len(p)) > c.limit {
		c.exceeded = true
		c.rejected += int64(len(p))
		return 0, domainForward.ErrFileTooLarge
	}
	n, err := c.w.Write(p)
	c.written += int64(n)
	return n, err
}

// observed is the smallest size the file is known to have.
func (c *cappedWriter) observed() int64 {
	return c.written + c.rejected
}

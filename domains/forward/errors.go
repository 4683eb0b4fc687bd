package forward

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMessageNotFound is returned by a SourceGateway when the message, or
// the chat that should hold it, cannot be seen by the session.
var ErrMessageNotFound = errors.New("message not found")

// ErrFileTooLarge is returned by writers that cap the download size.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

type InvalidLinkFormatError struct {
	Link string
}

func (e *InvalidLinkFormatError) Error() string {
	return fmt.Sprintf("invalid t.me link: %s", e.Link)
}

func (e *InvalidLinkFormatError) ErrCode() string { return "INVALID_LINK_FORMAT" }
func (e *InvalidLinkFormatError) StatusCode() int { return http.StatusBadRequest }

type MessageNotFoundError struct {
	Chat      string
	MessageID int
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("message %d not found in %s", e.MessageID, e.Chat)
}

func (e *MessageNotFoundError) ErrCode() string { return "MESSAGE_NOT_FOUND" }
func (e *MessageNotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *MessageNotFoundError) Is(target error) bool { return target == ErrMessageNotFound }

type NoMediaAttachedError struct {
	Text string
}

func (e *NoMediaAttachedError) Error() string {
	text := e.Text
	if text == "" {
		text = "(empty)"
	}
	return fmt.Sprintf("no media. text: %s", text)
}

func (e *NoMediaAttachedError) ErrCode() string { return "NO_MEDIA_ATTACHED" }
func (e *NoMediaAttachedError) StatusCode() int { return http.StatusUnprocessableEntity }

type FetchError struct {
	Err error
}

func (e *FetchError) Error() string   { return fmt.Sprintf("fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error   { return e.Err }
func (e *FetchError) ErrCode() string { return "FETCH_ERROR" }
func (e *FetchError) StatusCode() int { return http.StatusBadGateway }

type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large (%s MiB, limit %s MiB)", MiB(e.Size), MiB(e.Limit))
}

func (e *FileTooLargeError) ErrCode() string { return "FILE_TOO_LARGE" }
func (e *FileTooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

func (e *FileTooLargeError) Is(target error) bool { return target == ErrFileTooLarge }

type ForwardError struct {
	Err error
}

func (e *ForwardError) Error() string   { return fmt.Sprintf("forward failed: %v", e.Err) }
func (e *ForwardError) Unwrap() error   { return e.Err }
func (e *ForwardError) ErrCode() string { return "FORWARD_ERROR" }
func (e *ForwardError) StatusCode() int { return http.StatusBadGateway }

// UnhandledPipelineError wraps anything the pipeline did not classify,
// including recovered panics.
type UnhandledPipelineError struct {
	Link  string
	Cause any
}

func (e *UnhandledPipelineError) Error() string {
	return fmt.Sprintf("unhandled error while processing %s: %v", e.Link, e.Cause)
}

func (e *UnhandledPipelineError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

func (e *UnhandledPipelineError) ErrCode() string { return "UNHANDLED_PIPELINE_ERROR" }
func (e *UnhandledPipelineError) StatusCode() int { return http.StatusInternalServerError }

package forward

import (
	"context"
	"fmt"
	"io"
)

type MediaKind string

const (
	MediaKindPhoto    MediaKind = "photo"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// FetchedMessage is a message read by the source session. Media and
// Entities are opaque handles that only the gateway that produced them
// understands. Entities carries the formatting of Text.
type FetchedMessage struct {
	Reference    ParsedReference
	ID           int
	Text         string
	Entities     any
	HasMedia     bool
	Kind         MediaKind
	DeclaredSize int64
	FileName     string
	MimeType     string
	Media        any
}

// Artifact is a downloaded media file waiting to be relayed.
type Artifact struct {
	Path string
	Size int64
}

// Upload describes one file the relay session should send.
type Upload struct {
	Path            string
	Caption         string
	CaptionEntities any
	Kind            MediaKind
	FileName        string
	MimeType        string
}

type Result struct {
	Link    string    `json:"link"`
	Kind    MediaKind `json:"kind"`
	Size    int64     `json:"size"`
	Message string    `json:"message"`
}

// SourceGateway is the user-authenticated side: it reads messages and their media.
type SourceGateway interface {
	FetchMessage(ctx context.Context, ref ParsedReference) (*FetchedMessage, error)
	DownloadMedia(ctx context.Context, msg *FetchedMessage, w io.Writer) error
}

// RelayGateway is the bot-authenticated side: it uploads files to the destination chat.
type RelayGateway interface {
	SendFile(ctx context.Context, upload Upload) error
}

type IForwardUsecase interface {
	Forward(ctx context.Context, link string) (Result, error)
}

// MiB renders a byte count in mebibytes with two decimals.
func MiB(size int64) string {
	return fmt.Sprintf("%.2f", float64(size)/(1024*1024))
}

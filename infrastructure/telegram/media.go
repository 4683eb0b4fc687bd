package telegram

import (
	"mime"
	"strings"

	domainForward "github.com/AzielCF/telebridge/domains/forward"
	"github.com/gotd/td/tg"
)

// mediaRef is the opaque handle stored in FetchedMessage.Media.
type mediaRef struct {
	location tg.InputFileLocationClass
}

// describeMedia fills the media fields of msg from a raw message. Media
// that carries no file (web pages, locations, contacts, polls) is left
// as "no media".
func describeMedia(msg *domainForward.FetchedMessage, media tg.MessageMediaClass) {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		if m.Photo == nil {
			return
		}
		photo, ok := m.Photo.AsNotEmpty()
		if !ok {
			return
		}
		thumb, size := largestPhotoSize(photo.Sizes)
		if thumb == "" {
			return
		}
		msg.HasMedia = true
		msg.Kind = domainForward.MediaKindPhoto
		msg.DeclaredSize = int64(size)
		msg.MimeType = "image/jpeg"
		msg.FileName = "photo.jpg"
		msg.Media = &mediaRef{location: &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     thumb,
		}}

	case *tg.MessageMediaDocument:
		if m.Document == nil {
			return
		}
		doc, ok := m.Document.AsNotEmpty()
		if !ok {
			return
		}
		msg.HasMedia = true
		msg.Kind = documentKind(doc)
		msg.DeclaredSize = doc.Size
		msg.MimeType = doc.MimeType
		msg.FileName = documentFilename(doc)
		msg.Media = &mediaRef{location: doc.AsInputDocumentFileLocation()}
	}
}

// largestPhotoSize picks the biggest downloadable size of a photo.
func largestPhotoSize(sizes []tg.PhotoSizeClass) (string, int) {
	var bestType string
	var bestSize int
	for _, sizeClass := range sizes {
		var typ string
		var size int
		switch s := sizeClass.(type) {
		case *tg.PhotoSize:
			typ, size = s.Type, s.Size
		case *tg.PhotoSizeProgressive:
			typ = s.Type
			for _, n := range s.Sizes {
				if n > size {
					size = n
				}
			}
		default:
			continue
		}
		if bestType == "" || size > bestSize {
			bestType, bestSize = typ, size
		}
	}
	return bestType, bestSize
}

func documentKind(doc *tg.Document) domainForward.MediaKind {
	for _, attr := range doc.Attributes {
		if video, ok := attr.(*tg.DocumentAttributeVideo); ok && !video.RoundMessage {
			return domainForward.MediaKindVideo
		}
	}
	if strings.HasPrefix(doc.MimeType, "video/") {
		return domainForward.MediaKindVideo
	}
	return domainForward.MediaKindDocument
}

func documentFilename(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if a, ok := attr.(*tg.DocumentAttributeFilename); ok && strings.TrimSpace(a.FileName) != "" {
			return a.FileName
		}
	}
	name := "file"
	if exts, _ := mime.ExtensionsByType(doc.MimeType); len(exts) > 0 {
		name += exts[0]
	}
	return name
}

package forward

import (
	"regexp"
	"strconv"
	"strings"
)

// supergroupPrefix turns the numeric id of a private t.me/c/ link into
// the internal chat id form.
const supergroupPrefix = "-100"

var linkPattern = regexp.MustCompile(`https?://t\.me/((?:c/)?(\d+|[A-Za-z0-9_]+)/(\d+))`)

// ParsedReference points at one message. Exactly one of ChatID and Handle is set.
type ParsedReference struct {
	Raw       string
	ChatID    int64
	Handle    string
	MessageID int
}

func (r ParsedReference) IsHandle() bool {
	return r.Handle != ""
}

// Chat returns a printable form of the chat part.
func (r ParsedReference) Chat() string {
	if r.IsHandle() {
		return r.Handle
	}
	return strconv.FormatInt(r.ChatID, 10)
}

// ParseLink extracts the chat and message id from a shareable t.me link.
func ParseLink(raw string) (ParsedReference, error) {
	m := linkPattern.FindStringSubmatch(raw)
	if m == nil {
		return ParsedReference{}, &InvalidLinkFormatError{Link: raw}
	}
	fullPath, chatPart, msgPart := m[1], m[2], m[3]

	msgID, err := strconv.Atoi(msgPart)
	if err != nil {
		return ParsedReference{}, &InvalidLinkFormatError{Link: raw}
	}

	ref := ParsedReference{Raw: raw, MessageID: msgID}
	if strings.HasPrefix(fullPath, "c/") {
		chatID, err := strconv.ParseInt(supergroupPrefix+chatPart, 10, 64)
		if err != nil {
			// c/ followed by a handle, or a numeric id that overflows
			return ParsedReference{}, &InvalidLinkFormatError{Link: raw}
		}
		ref.ChatID = chatID
		return ref, nil
	}

	if strings.HasPrefix(chatPart, "@") {
		ref.Handle = chatPart
	} else {
		ref.Handle = "@" + chatPart
	}
	return ref, nil
}

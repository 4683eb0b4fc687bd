package telegram

import (
	"sort"
	"unicode/utf16"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/entity"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/tg"
)

// styledCaption rebuilds a caption with the formatting of the source
// message. Entity offsets are in UTF-16 code units.
func styledCaption(text string, entities []tg.MessageEntityClass) []message.StyledTextOption {
	if text == "" {
		return nil
	}
	if len(entities) == 0 {
		return []message.StyledTextOption{styling.Plain(text)}
	}

	units := utf16.Encode([]rune(text))
	return []message.StyledTextOption{styling.Custom(func(eb *entity.Builder) error {
		for _, seg := range captionSegments(len(units), entities) {
			part := string(utf16.Decode(units[seg.from:seg.to]))
			if len(seg.formats) == 0 {
				eb.Plain(part)
				continue
			}
			eb.Format(part, seg.formats...)
		}
		return nil
	})}
}

type captionSegment struct {
	from, to int
	formats  []entity.Formatter
}

// captionSegments cuts the text at every entity boundary so that
// overlapping entities become per-segment formatter sets.
func captionSegments(size int, entities []tg.MessageEntityClass) []captionSegment {
	cuts := map[int]struct{}{0: {}, size: {}}
	for _, e := range entities {
		start, end := clampRange(e.GetOffset(), e.GetLength(), size)
		cuts[start] = struct{}{}
		cuts[end] = struct{}{}
	}
	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		bounds = append(bounds, c)
	}
	sort.Ints(bounds)

	segments := make([]captionSegment, 0, len(bounds))
	for i := 0; i+1 < len(bounds); i++ {
		seg := captionSegment{from: bounds[i], to: bounds[i+1]}
		for _, e := range entities {
			start, end := clampRange(e.GetOffset(), e.GetLength(), size)
			if start <= seg.from && seg.to <= end {
				if f := entityFormatter(e); f != nil {
					seg.formats = append(seg.formats, f)
				}
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

func clampRange(offset, length, size int) (int, int) {
	start := min(max(offset, 0), size)
	end := min(max(offset+length, start), size)
	return start, end
}

// entityFormatter maps a received entity to its builder form. Entities the
// relay bot cannot reproduce, such as mentions that need an access hash,
// fall back to plain text.
func entityFormatter(e tg.MessageEntityClass) entity.Formatter {
	switch v := e.(type) {
	case *tg.MessageEntityBold:
		return entity.Bold()
	case *tg.MessageEntityItalic:
		return entity.Italic()
	case *tg.MessageEntityUnderline:
		return entity.Underline()
	case *tg.MessageEntityStrike:
		return entity.Strike()
	case *tg.MessageEntitySpoiler:
		return entity.Spoiler()
	case *tg.MessageEntityCode:
		return entity.Code()
	case *tg.MessageEntityPre:
		return entity.Pre(v.Language)
	case *tg.MessageEntityTextURL:
		return entity.TextURL(v.URL)
	case *tg.MessageEntityURL:
		return entity.URL()
	case *tg.MessageEntityEmail:
		return entity.Email()
	case *tg.MessageEntityPhone:
		return entity.Phone()
	case *tg.MessageEntityMention:
		return entity.Mention()
	case *tg.MessageEntityHashtag:
		return entity.Hashtag()
	case *tg.MessageEntityCashtag:
		return entity.Cashtag()
	case *tg.MessageEntityBotCommand:
		return entity.BotCommand()
	case *tg.MessageEntityBlockquote:
		return entity.Blockquote(v.Collapsed)
	case *tg.MessageEntityCustomEmoji:
		return entity.CustomEmoji(v.DocumentID)
	}
	return nil
}

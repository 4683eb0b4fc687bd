package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domainForward "github.com/AzielCF/telebridge/domains/forward"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
)

const targetSelf = "self"

// RelaySession is the bot session that re-uploads downloaded media.
type RelaySession struct {
	*connection
	target   string
	uploader *uploader.Uploader
	sender   *message.Sender
}

var _ domainForward.RelayGateway = (*RelaySession)(nil)

// NewRelaySession connects and authorizes the bot. The target is where every
// upload goes: "self", "@username" or a numeric chat id.
func NewRelaySession(ctx context.Context, cfg SessionConfig, botToken, target string) (*RelaySession, error) {
	if strings.TrimSpace(botToken) == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}

	s, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	status, err := s.client.Auth().Status(ctx)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("telegram: bot auth status: %w", err)
	}
	if !status.Authorized {
		if _, err := s.client.Auth().Bot(ctx, botToken); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("telegram: authorize bot: %w", err)
		}
	}

	up := uploader.NewUploader(s.api)
	relay := &RelaySession{
		connection: s,
		target:     normalizeTarget(target),
		uploader:   up,
		sender:     message.NewSender(s.api).WithUploader(up),
	}
	logrus.Infof("[TELEGRAM] relay bot ready, target %s", relay.target)
	return relay, nil
}

func (r *RelaySession) SendFile(ctx context.Context, upload domainForward.Upload) error {
	file, err := r.uploader.FromPath(ctx, upload.Path)
	if err != nil {
		return fmt.Errorf("upload %s: %w", upload.Path, err)
	}

	entities, _ := upload.CaptionEntities.([]tg.MessageEntityClass)
	caption := styledCaption(upload.Caption, entities)

	document := message.UploadedDocument(file, caption...)
	if upload.MimeType != "" {
		document.MIME(upload.MimeType)
	}
	if upload.FileName != "" {
		document.Attributes(&tg.DocumentAttributeFilename{FileName: upload.FileName})
	}

	builder, err := r.destination(ctx)
	if err != nil {
		return err
	}
	if _, err := builder.Media(ctx, document); err != nil {
		return fmt.Errorf("send %s to %s: %w", upload.Kind, r.target, err)
	}
	return nil
}

func (r *RelaySession) destination(ctx context.Context) (*message.RequestBuilder, error) {
	if r.target == targetSelf {
		return r.sender.Self(), nil
	}

	id, err := strconv.ParseInt(r.target, 10, 64)
	if err != nil {
		return r.sender.Resolve(r.target), nil
	}

	switch {
	case id < -channelChatIDOffset:
		ch, err := r.peers.ResolveChannelID(ctx, -id-channelChatIDOffset)
		if err != nil {
			return nil, fmt.Errorf("resolve target %s: %w", r.target, err)
		}
		return r.sender.To(ch.InputPeer()), nil
	case id < 0:
		return r.sender.To(&tg.InputPeerChat{ChatID: -id}), nil
	default:
		user, err := r.peers.ResolveUserID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve target %s: %w", r.target, err)
		}
		return r.sender.To(user.InputPeer()), nil
	}
}

func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	switch strings.ToLower(target) {
	case "", targetSelf, "me":
		return targetSelf
	}
	if _, err := strconv.ParseInt(target, 10, 64); err == nil {
		return target
	}
	if !strings.HasPrefix(target, "@") {
		target = "@" + target
	}
	return target
}

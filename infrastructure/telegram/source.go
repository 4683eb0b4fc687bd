package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainForward "github.com/AzielCF/telebridge/domains/forward"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/sirupsen/logrus"
)

// channelChatIDOffset maps a channel id to the -100... chat id form used in links.
const channelChatIDOffset int64 = 1_000_000_000_000

// inaccessible lists RPC errors that mean the chat or message cannot be seen.
var inaccessible = []string{
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"CHAT_ID_INVALID",
	"USERNAME_NOT_OCCUPIED",
	"USERNAME_INVALID",
	"PEER_ID_INVALID",
	"MSG_ID_INVALID",
}

// SourceSession is the user account session. It logs in interactively and
// reads messages and media on behalf of the relay.
type SourceSession struct {
	*connection
	downloader *downloader.Downloader

	peerMu    sync.Mutex
	peerCache map[int64]tg.InputPeerClass
}

var (
	_ domainAuth.UserGateway      = (*SourceSession)(nil)
	_ domainForward.SourceGateway = (*SourceSession)(nil)
)

func NewSourceSession(ctx context.Context, cfg SessionConfig) (*SourceSession, error) {
	s, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &SourceSession{
		connection: s,
		downloader: downloader.NewDownloader(),
		peerCache:  make(map[int64]tg.InputPeerClass),
	}, nil
}

func (s *SourceSession) SendCode(ctx context.Context, phone string) (string, error) {
	sent, err := s.client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", err
	}
	switch code := sent.(type) {
	case *tg.AuthSentCode:
		return code.PhoneCodeHash, nil
	default:
		return "", fmt.Errorf("unexpected send code result type: %T", sent)
	}
}

func (s *SourceSession) SignIn(ctx context.Context, phone, code, codeHash string) (domainAuth.Me, error) {
	authz, err := s.client.Auth().SignIn(ctx, phone, code, codeHash)
	if isPasswordNeeded(err) {
		return domainAuth.Me{}, domainAuth.ErrPasswordRequired
	}
	if err != nil {
		return domainAuth.Me{}, err
	}
	return meFromAuthorization(ctx, s, authz)
}

func (s *SourceSession) CheckPassword(ctx context.Context, password string) (domainAuth.Me, error) {
	authz, err := s.client.Auth().Password(ctx, password)
	if err != nil {
		return domainAuth.Me{}, err
	}
	return meFromAuthorization(ctx, s, authz)
}

func (s *SourceSession) Authorized(ctx context.Context) (bool, error) {
	status, err := s.client.Auth().Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Authorized, nil
}

func (s *SourceSession) Self(ctx context.Context) (domainAuth.Me, error) {
	user, err := s.client.Self(ctx)
	if err != nil {
		return domainAuth.Me{}, err
	}
	return meFromUser(user), nil
}

func meFromAuthorization(ctx context.Context, s *SourceSession, authz *tg.AuthAuthorization) (domainAuth.Me, error) {
	if authz != nil {
		if user, ok := authz.User.AsNotEmpty(); ok {
			return meFromUser(user), nil
		}
	}
	return s.Self(ctx)
}

func meFromUser(user *tg.User) domainAuth.Me {
	return domainAuth.Me{ID: user.ID, Name: formatUserDisplay(user)}
}

func (s *SourceSession) FetchMessage(ctx context.Context, ref domainForward.ParsedReference) (*domainForward.FetchedMessage, error) {
	peer, err := s.resolvePeer(ctx, ref)
	if err != nil {
		return nil, classifyRPCError(err)
	}

	raw, err := fetchSingleMessage(ctx, s.api, peer, ref.MessageID)
	if err != nil {
		return nil, classifyRPCError(err)
	}

	msg := &domainForward.FetchedMessage{
		Reference: ref,
		ID:        raw.ID,
		Text:      raw.Message,
	}
	if len(raw.Entities) > 0 {
		msg.Entities = raw.Entities
	}
	if media, ok := raw.GetMedia(); ok {
		describeMedia(msg, media)
	}
	return msg, nil
}

func (s *SourceSession) DownloadMedia(ctx context.Context, msg *domainForward.FetchedMessage, w io.Writer) error {
	ref, ok := msg.Media.(*mediaRef)
	if !ok || ref == nil {
		return fmt.Errorf("message %d has no downloadable media", msg.ID)
	}
	_, err := s.downloader.Download(s.api, ref.location).Stream(ctx, w)
	return err
}

func (s *SourceSession) resolvePeer(ctx context.Context, ref domainForward.ParsedReference) (tg.InputPeerClass, error) {
	if ref.IsHandle() {
		p, err := s.peers.ResolveDomain(ctx, strings.TrimPrefix(ref.Handle, "@"))
		if err != nil {
			return nil, err
		}
		return p.InputPeer(), nil
	}

	s.peerMu.Lock()
	cached, ok := s.peerCache[ref.ChatID]
	s.peerMu.Unlock()
	if ok {
		return cached, nil
	}

	var peer tg.InputPeerClass
	if channelID := -ref.ChatID - channelChatIDOffset; channelID > 0 {
		if ch, err := s.peers.ResolveChannelID(ctx, channelID); err == nil {
			peer = ch.InputPeer()
		} else {
			logrus.WithError(err).Debugf("[TELEGRAM] resolve channel %d failed, scanning dialogs", channelID)
		}
	}
	if peer == nil {
		lookup, err := collectDialogPeers(ctx, s.api)
		if err != nil {
			return nil, err
		}
		found, ok := lookup[ref.ChatID]
		if !ok {
			return nil, domainForward.ErrMessageNotFound
		}
		peer = found
	}

	s.peerMu.Lock()
	s.peerCache[ref.ChatID] = peer
	s.peerMu.Unlock()
	return peer, nil
}

// collectDialogPeers indexes every dialog of the account by its chat id.
func collectDialogPeers(ctx context.Context, api *tg.Client) (map[int64]tg.InputPeerClass, error) {
	lookup := make(map[int64]tg.InputPeerClass, 256)
	err := query.GetDialogs(api).BatchSize(100).ForEach(ctx, func(_ context.Context, elem dialogs.Elem) error {
		if chatID, ok := dialogChatID(elem.Dialog.GetPeer()); ok {
			lookup[chatID] = elem.Peer
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lookup, nil
}

func dialogChatID(peer tg.PeerClass) (int64, bool) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID, true
	case *tg.PeerChat:
		return -p.ChatID, true
	case *tg.PeerChannel:
		return -(channelChatIDOffset + p.ChannelID), true
	}
	return 0, false
}

func fetchSingleMessage(ctx context.Context, api *tg.Client, peer tg.InputPeerClass, msgID int) (*tg.Message, error) {
	if peer == nil || msgID <= 0 {
		return nil, domainForward.ErrMessageNotFound
	}
	input := []tg.InputMessageClass{&tg.InputMessageID{ID: msgID}}

	var resp tg.MessagesMessagesClass
	var err error
	switch p := peer.(type) {
	case *tg.InputPeerChannel:
		resp, err = api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash},
			ID:      input,
		})
	default:
		resp, err = api.MessagesGetMessages(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	modified, ok := resp.AsModified()
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", resp)
	}
	for _, msgClass := range modified.GetMessages() {
		if msg, ok := msgClass.(*tg.Message); ok && msg.ID == msgID && inChat(msg, peer) {
			return msg, nil
		}
	}
	// *tg.MessageEmpty and service messages end up here
	return nil, domainForward.ErrMessageNotFound
}

// inChat reports whether msg belongs to peer. messages.getMessages looks ids
// up in the account-wide box, so the same id may point into another chat.
func inChat(msg *tg.Message, peer tg.InputPeerClass) bool {
	switch p := peer.(type) {
	case *tg.InputPeerUser:
		u, ok := msg.PeerID.(*tg.PeerUser)
		return ok && u.UserID == p.UserID
	case *tg.InputPeerChat:
		c, ok := msg.PeerID.(*tg.PeerChat)
		return ok && c.ChatID == p.ChatID
	case *tg.InputPeerChannel:
		c, ok := msg.PeerID.(*tg.PeerChannel)
		return ok && c.ChannelID == p.ChannelID
	case *tg.InputPeerSelf:
		_, ok := msg.PeerID.(*tg.PeerUser)
		return ok
	}
	return false
}

func classifyRPCError(err error) error {
	if err == nil {
		return nil
	}
	if tgerr.Is(err, inaccessible...) {
		return fmt.Errorf("%w: %v", domainForward.ErrMessageNotFound, err)
	}
	return err
}

func isPasswordNeeded(err error) bool {
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return true
	}
	return tgerr.Is(err, "SESSION_PASSWORD_NEEDED")
}

func formatUserDisplay(user *tg.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(strings.Join([]string{user.FirstName, user.LastName}, " "))
	if name != "" {
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("User %d", user.ID)
}

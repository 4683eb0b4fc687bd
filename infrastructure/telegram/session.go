package telegram

import (
	"context"
	"fmt"

	"github.com/AzielCF/telebridge/pkg/utils"
	"github.com/gotd/contrib/bg"
	tdtelegram "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/peers"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
)

type SessionConfig struct {
	APIID      int
	APIHash    string
	StorageDir string
	Name       string
}

// connection is one connected gotd client running in the background.
type connection struct {
	name   string
	client *tdtelegram.Client
	api    *tg.Client
	peers  *peers.Manager
	stop   bg.StopFunc
}

func connect(ctx context.Context, cfg SessionConfig) (*connection, error) {
	if cfg.APIID <= 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("telegram: api id and hash are required")
	}
	if err := utils.CreateFolder(cfg.StorageDir); err != nil {
		return nil, err
	}

	client := tdtelegram.NewClient(cfg.APIID, cfg.APIHash, tdtelegram.Options{
		SessionStorage: &fileSessionStorage{path: utils.SessionPath(cfg.StorageDir, cfg.Name)},
	})

	stop, err := bg.Connect(client, bg.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("telegram: connect %s: %w", cfg.Name, err)
	}

	api := client.API()
	logrus.Infof("[TELEGRAM] session %s connected", cfg.Name)
	return &connection{
		name:   cfg.Name,
		client: client,
		api:    api,
		peers:  peers.Options{}.Build(api),
		stop:   stop,
	}, nil
}

func (s *connection) Close() error {
	if s == nil || s.stop == nil {
		return nil
	}
	err := s.stop()
	if err != nil {
		logrus.WithError(err).Warnf("[TELEGRAM] session %s stopped with error", s.name)
		return err
	}
	logrus.Infof("[TELEGRAM] session %s stopped", s.name)
	return nil
}

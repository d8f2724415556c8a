package notify

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type discordNotifier struct {
	session   *discordgo.Session
	channelID string

	logger *zap.Logger
}

func newDiscord(cfg Config) (*discordNotifier, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	if err := dg.Open(); err != nil {
		return nil, err
	}
	logger := cfg.Logger.With(zap.String("notify", "discord"))
	logger.Info("Discord notifier connected", zap.String("channelID", cfg.ChannelID))
	return &discordNotifier{
		session:   dg,
		channelID: cfg.ChannelID,
		logger:    logger,
	}, nil
}

func (n *discordNotifier) Notify(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, msg); err != nil {
		n.logger.Warn("cannot send notification", zap.Error(err))
		return err
	}
	return nil
}

func (n *discordNotifier) Close() error {
	return n.session.Close()
}

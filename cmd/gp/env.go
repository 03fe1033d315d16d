package main

import (
	"fmt"
	"log/slog"

	"github.com/crewbase/gangplank/internal/config"
	"github.com/crewbase/gangplank/internal/db"
	"github.com/crewbase/gangplank/internal/notify"
	"gorm.io/gorm"
)

// openDB loads configuration and connects to the configured database.
func openDB(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

// buildEmitter assembles the notification fanout: the in-app store always,
// plus Slack and Discord when configured.
func buildEmitter(conn *gorm.DB, cfg *config.Config) (notify.Emitter, *notify.Store, error) {
	store := notify.NewStore(conn)
	fanout := notify.Fanout{store}

	if cfg.Notify.Slack.BotToken != "" {
		s, err := notify.NewSlack(notify.SlackOpts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.ChannelID,
		})
		if err != nil {
			return nil, nil, err
		}
		fanout = append(fanout, s)
		slog.Info("slack notifications enabled", "channel", cfg.Notify.Slack.ChannelID)
	}
	if cfg.Notify.Discord.BotToken != "" {
		d, err := notify.NewDiscord(notify.DiscordOpts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err != nil {
			return nil, nil, err
		}
		fanout = append(fanout, d)
		slog.Info("discord notifications enabled", "channel", cfg.Notify.Discord.ChannelID)
	}
	return fanout, store, nil
}

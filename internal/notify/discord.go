package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo.Session methods we use, enabling
// test mocks.
type discordSession interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts events to a Discord channel as embeds.
type Discord struct {
	sess      discordSession
	channelID string
}

// DiscordOpts holds parameters for creating a Discord emitter.
type DiscordOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real gateway client.
	Session discordSession
}

// NewDiscord creates a Discord emitter.
func NewDiscord(opts DiscordOpts) (*Discord, error) {
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: discord channel is required")
	}
	if opts.Session == nil {
		if opts.BotToken == "" {
			return nil, fmt.Errorf("notify: discord bot token is required")
		}
		sess, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("notify: discord session: %w", err)
		}
		opts.Session = sess
	}
	return &Discord{sess: opts.Session, channelID: opts.ChannelID}, nil
}

// Emit posts the event to the configured channel.
func (d *Discord) Emit(ctx context.Context, ev Event) error {
	embed := &discordgo.MessageEmbed{
		Title:       headline(ev),
		Description: body(ev),
		Color:       hexColor(color(ev)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Assignment", Value: ev.AssignmentID, Inline: true},
			{Name: "For", Value: ev.TargetUserID, Inline: true},
		},
	}
	if _, err := d.sess.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("notify: discord send: %w", err)
	}
	return nil
}

// hexColor converts a "#rrggbb" string to the integer Discord expects.
func hexColor(c string) int {
	n, err := strconv.ParseInt(strings.TrimPrefix(c, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(n)
}

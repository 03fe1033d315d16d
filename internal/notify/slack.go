package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Slack posts events to a Slack channel as attachment messages.
type Slack struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a Slack emitter.
type SlackOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a Slack emitter.
func NewSlack(opts SlackOpts) (*Slack, error) {
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack channel is required")
	}
	if opts.Client == nil {
		if opts.BotToken == "" {
			return nil, fmt.Errorf("notify: slack bot token is required")
		}
		opts.Client = slackapi.New(opts.BotToken)
	}
	return &Slack{client: opts.Client, channelID: opts.ChannelID}, nil
}

// Emit posts the event to the configured channel.
func (s *Slack) Emit(ctx context.Context, ev Event) error {
	attachment := slackapi.Attachment{
		Color: color(ev),
		Title: headline(ev),
		Text:  body(ev),
		Fields: []slackapi.AttachmentField{
			{Title: "Assignment", Value: ev.AssignmentID, Short: true},
			{Title: "For", Value: ev.TargetUserID, Short: true},
		},
	}
	_, _, err := s.client.PostMessageContext(ctx, s.channelID, slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}

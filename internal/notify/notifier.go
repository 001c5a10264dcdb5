// Package notify alerts operators when a committed mutation could not be
// mirrored to the secondary audit store.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/seguro/internal/domain"
)

// SlackAPI abstracts the subset of the Slack client used by Notifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Notifier posts degraded-audit alerts to a Slack channel. Without a
// channel it only logs.
type Notifier struct {
	api     SlackAPI
	channel string
}

// New creates a Notifier. api may be nil, in which case alerts are logged.
func New(api SlackAPI, channel string) *Notifier {
	return &Notifier{api: api, channel: channel}
}

// NewSlack builds a Notifier backed by the Slack Web API.
func NewSlack(token, channel string) *Notifier {
	return New(slacklib.New(token), channel)
}

// AuditDegraded reports that ev was committed to the entity store but its
// secondary copy failed with cause.
func (n *Notifier) AuditDegraded(ctx context.Context, ev *domain.AuditEvent, cause error) error {
	if n.api == nil || n.channel == "" {
		log.Warn().
			Str("op", string(ev.Operation)).
			Str("entity_id", ev.EntityID.String()).
			Err(cause).
			Msg("notify: audit degraded, no alert channel configured")
		return nil
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slacklib.MsgOptionText(DegradedText(ev), false),
		slacklib.MsgOptionBlocks(BuildDegradedBlocks(ev, cause)...),
	)
	if err != nil {
		return fmt.Errorf("notify.Notifier.AuditDegraded: %w", err)
	}

	return nil
}

// DegradedText is the plain-text fallback of an alert.
func DegradedText(ev *domain.AuditEvent) string {
	return fmt.Sprintf("Audit degraded: %s on %s %s by %s was committed but not mirrored",
		ev.Operation, ev.EntityType, ev.EntityID, ev.Actor)
}

// BuildDegradedBlocks builds Slack Block Kit blocks for a degraded-audit alert.
func BuildDegradedBlocks(ev *domain.AuditEvent, cause error) []slacklib.Block {
	text := fmt.Sprintf("*Audit degraded*\n*Operation:* `%s`\n*Entity:* %s `%s`\n*Actor:* %s",
		ev.Operation, ev.EntityType, ev.EntityID, ev.Actor)
	section := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
		nil,
		nil,
	)

	if cause == nil {
		return []slacklib.Block{section}
	}

	detail := slacklib.NewContextBlock("",
		slacklib.NewTextBlockObject(slacklib.PlainTextType, cause.Error(), false, false),
	)
	return []slacklib.Block{section, detail}
}

// Package notify pushes ballot lifecycle messages to a Discord channel.
// Delivery is best effort: the indexer logs failures and moves on, it
// never blocks governance on a chat outage.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

type Config struct {
	Token     string
	ChannelID string

	Logger *zap.Logger
}

type Notifier interface {
	Notify(ctx context.Context, msg string) error
	Close() error
}

// New returns a Discord-backed notifier, or a no-op one when no bot token
// is configured.
func New(cfg Config) (Notifier, error) {
	if cfg.Token == "" || cfg.ChannelID == "" {
		return &nopNotifier{}, nil
	}
	return newDiscord(cfg)
}

type nopNotifier struct{}

func (n *nopNotifier) Notify(ctx context.Context, msg string) error { return nil }
func (n *nopNotifier) Close() error                                 { return nil }

// FormatEvent renders the journal events worth announcing. It returns the
// empty string for routine ledger traffic.
func FormatEvent(ev *types.Event) string {
	switch ev.Type {
	case types.EventProposalAdded:
		return fmt.Sprintf("New ballot #%d: %s (voting ends at %d)", ev.ProposalID, ev.Description, ev.EndTime)
	case types.EventFinished:
		verdict := "did not pass"
		if ev.Passed {
			verdict = "passed and executed"
		}
		return fmt.Sprintf("Ballot #%d finished: %s (%d for / %d against, %d voters)",
			ev.ProposalID, verdict, ev.Consenting, ev.Dissenters, ev.UsersVoted)
	case types.EventFinishedEmergency:
		return fmt.Sprintf("Ballot #%d was ended by emergency governance action", ev.ProposalID)
	default:
		return ""
	}
}

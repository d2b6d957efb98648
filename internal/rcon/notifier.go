package rcon

import (
	"context"

	"go.uber.org/zap"
)

// PlayerNames resolves an account uid to the current in-game name.
type PlayerNames interface {
	NameByUID(ctx context.Context, uid string) (string, error)
}

// Notifier sends courtesy whispers for marketplace events. Delivery is
// best-effort: a player who is offline simply misses the whisper and
// catches up from the request board.
type Notifier struct {
	console *Client
	names   PlayerNames
	log     *zap.SugaredLogger
}

func NewNotifier(console *Client, names PlayerNames, log *zap.SugaredLogger) *Notifier {
	return &Notifier{console: console, names: names, log: log}
}

func (n *Notifier) Whisper(ctx context.Context, playerUID, message string) {
	if n.console == nil {
		return
	}
	name, err := n.names.NameByUID(ctx, playerUID)
	if err != nil {
		n.log.Debugw("whisper skipped, unknown player", "uid", playerUID, "err", err)
		return
	}
	if err := n.console.Tell(name, message); err != nil {
		n.log.Warnw("whisper delivery failed", "player", name, "err", err)
	}
}

package service

import "context"

// Notifier delivers best-effort in-game whispers. Implementations must
// never block business flows on delivery; failures are logged and dropped.
type Notifier interface {
	Whisper(ctx context.Context, playerUID, message string)
}

// noopNotifier is used when the RCON console is unavailable.
type noopNotifier struct{}

func (noopNotifier) Whisper(context.Context, string, string) {}

// NopNotifier returns a Notifier that drops everything.
func NopNotifier() Notifier {
	return noopNotifier{}
}

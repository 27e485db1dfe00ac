package push

import (
	"context"
	"fmt"
)

// Sender delivers one push notification to one device token.
// The receipt is the provider's message id for the accepted delivery.
type Sender interface {
	Send(ctx context.Context, token, title, body string) (receipt string, err error)
}

type disabled struct {
	reason string
}

// Disabled returns a Sender that fails every delivery with the given reason.
// Used when no provider could be initialised, so dispatch still runs and the
// failure shows up per token instead of killing the process.
func Disabled(reason string) Sender {
	return &disabled{reason: reason}
}

func (d *disabled) Send(_ context.Context, _, _, _ string) (string, error) {
	return "", fmt.Errorf("push delivery disabled: %s", d.reason)
}

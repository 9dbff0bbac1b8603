package notify

import "context"

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

package driven

import "context"

// URLOpener opens a destination URL in a new browsing context.
type URLOpener interface {
	Open(ctx context.Context, url string) error
}

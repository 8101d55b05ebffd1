package ports

import "context"

// ContentPublisher pins a document to a content-addressed store. Calls are not
// assumed idempotent: publishing the same bytes twice may or may not yield the
// same CID.
type ContentPublisher interface {
	Publish(ctx context.Context, content []byte, name string) (string, error)
}

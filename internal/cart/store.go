package cart

import "context"

// Store persists cart lines per owner. Load of an unknown owner returns no
// lines and no error.
type Store interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context, owner string) ([]Line, error)
	Save(ctx context.Context, owner string, lines []Line) error
	Delete(ctx context.Context, owner string) error
}

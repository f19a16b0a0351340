package scan

import "context"

// Store holds scan results for the serving surface. Results live only for
// the process lifetime; the scanner carries no database.
type Store interface {
	Get(ctx context.Context, id string) (*Result, bool, error)
	Latest(ctx context.Context) (*Result, bool, error)
	Put(ctx context.Context, result *Result) error
}

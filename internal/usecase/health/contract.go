package health

import "context"

// StorePinger checks template store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

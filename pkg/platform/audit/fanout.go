package audit

import (
	"context"
	"errors"
)

// Fanout appends each event to every store and joins their errors.
type Fanout []Store

func (f Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListBySubject reads from the first store that supports listing.
func (f Fanout) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	for _, s := range f {
		if l, ok := s.(Lister); ok {
			return l.ListBySubject(ctx, subject)
		}
	}
	return nil, ErrListUnsupported
}

var ErrListUnsupported = errors.New("audit store does not support listing")

package maintenance

import (
	"context"
	"errors"
)

// fakePurger implements the purge contract over an in-memory row count.
type fakePurger struct {
	deleted  map[string]int64
	failOn   string
	purged   []string
	closed   bool
	closeErr error
}

func (f *fakePurger) CountSoftDeleted(_ context.Context, table string) (int64, error) {
	if table == f.failOn {
		return 0, errors.New("boom")
	}
	return f.deleted[table], nil
}

func (f *fakePurger) PurgeSoftDeleted(_ context.Context, table string) (int64, error) {
	if table == f.failOn {
		return 0, errors.New("boom")
	}
	n := f.deleted[table]
	delete(f.deleted, table)
	f.purged = append(f.purged, table)
	return n, nil
}

func (f *fakePurger) Close() error {
	f.closed = true
	return f.closeErr
}

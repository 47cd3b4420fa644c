package github

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SharedDo runs fill once per key for every concurrent caller. The fill is
// detached from the cancellation of whichever caller started it, and each
// caller stops waiting as soon as its own ctx is done.
func SharedDo(ctx context.Context, group *singleflight.Group, key string, fill func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (interface{}, error) {
		return fill(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

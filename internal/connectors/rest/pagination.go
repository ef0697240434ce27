package rest

import "context"

// Default pagination bounds.
const (
	DefaultMaxPages = 10
	DefaultMaxItems = 1000
)

// Page is one page of upstream results.
type Page[T any] struct {
	Items []T

	// Done is set when the upstream reports there are no further pages.
	// Left unset, paging continues until a short or empty page.
	Done bool
}

// Bounds limits how much a paginator fetches.
type Bounds struct {
	// PageSize is the number of items requested per page.
	PageSize int

	// MaxPages stops after this many pages. Zero uses DefaultMaxPages.
	MaxPages int

	// MaxItems stops once this many items are collected. Zero uses DefaultMaxItems.
	MaxItems int
}

func (b Bounds) normalised() Bounds {
	if b.MaxPages <= 0 {
		b.MaxPages = DefaultMaxPages
	}
	if b.MaxItems <= 0 {
		b.MaxItems = DefaultMaxItems
	}
	if b.PageSize <= 0 || b.PageSize > b.MaxItems {
		b.PageSize = b.MaxItems
	}
	return b
}

// PaginatePages walks page-numbered results starting at page 1.
// It stops on an empty or short page, when Done is set, or when
// MaxPages or MaxItems is reached. Items collected before an error are
// returned alongside it.
func PaginatePages[T any](
	ctx context.Context, bounds Bounds, fetch func(ctx context.Context, page, size int) (Page[T], error),
) ([]T, error) {
	return paginate(ctx, bounds, func(ctx context.Context, n, size int) (Page[T], error) {
		return fetch(ctx, n+1, size)
	})
}

// PaginateOffset walks offset-based results starting at offset 0.
// Termination matches PaginatePages.
func PaginateOffset[T any](
	ctx context.Context, bounds Bounds, fetch func(ctx context.Context, offset, size int) (Page[T], error),
) ([]T, error) {
	b := bounds.normalised()
	return paginate(ctx, b, func(ctx context.Context, n, size int) (Page[T], error) {
		return fetch(ctx, n*b.PageSize, size)
	})
}

func paginate[T any](
	ctx context.Context, bounds Bounds, fetch func(ctx context.Context, n, size int) (Page[T], error),
) ([]T, error) {
	b := bounds.normalised()
	var all []T

	for n := 0; n < b.MaxPages; n++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		size := min(b.PageSize, b.MaxItems-len(all))
		page, err := fetch(ctx, n, size)
		if err != nil {
			return all, err
		}

		all = append(all, page.Items...)
		if len(all) >= b.MaxItems {
			return all[:b.MaxItems], nil
		}
		if len(page.Items) == 0 || len(page.Items) < size || page.Done {
			break
		}
	}

	return all, nil
}

package main

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
)

// pageLimit is the largest page the API serves.
const pageLimit = 100

// collect walks every page of a list endpoint.
func collect[T any](ctx context.Context, fetch func(context.Context, apiclient.Query) (*apiclient.Page[T], error), q apiclient.Query) ([]T, error) {
	q.Limit = pageLimit
	var all []T
	for page := 1; ; page++ {
		q.Page = page
		res, err := fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if page >= res.Pagination.TotalPages || len(res.Items) == 0 {
			return all, nil
		}
	}
}

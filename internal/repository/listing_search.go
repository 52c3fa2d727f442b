package repository

import (
	"context"
	"strings"

	"github.com/thedjrox/Leftover-Locator/internal/model"
)

// earthRadiusMiles feeds the great-circle distance computed in SQL.
const earthRadiusMiles = "3958.8"

// haversineExpr computes the great-circle distance in miles between a
// listing's coordinates and a caller-supplied point. The LEAST/GREATEST
// clamp keeps floating-point drift from pushing the ACOS argument out of
// [-1, 1]. Bind order: lat, lat, lng.
const haversineExpr = `(` + earthRadiusMiles + ` * ACOS(LEAST(1.0, GREATEST(-1.0,
	SIN(RADIANS(latitude)) * SIN(RADIANS(?)) +
	COS(RADIANS(latitude)) * COS(RADIANS(?)) * COS(RADIANS(?) - RADIANS(longitude))))))`

// SearchQuery is the typed filter set for listing searches. Fields left
// at their zero value (or nil) impose no restriction. String-to-number
// parsing happens at the HTTP layer; by the time a SearchQuery exists
// every value is already validated.
type SearchQuery struct {
	Cuisines []string // case-insensitive substring match, any-of
	MinBags  *int     // number_of_bags >= MinBags
	Radius   *float64 // miles from (Lat, Lng); requires both coordinates
	Lat      *float64
	Lng      *float64
}

// geoFiltered reports whether the query carries a complete distance
// filter. Radius without a center (or vice versa) is ignored, matching
// the upstream feed contract.
func (q SearchQuery) geoFiltered() bool {
	return q.Radius != nil && q.Lat != nil && q.Lng != nil
}

// clause is one ANDed predicate with its bind arguments.
type clause struct {
	sql  string
	args []any
}

// buildSearch compiles a SearchQuery into a single parameterized
// statement. Predicates compose conjunctively; only listings with
// resolved coordinates are ever eligible, regardless of filters. There
// is no implicit relevance sort; ordering by id only makes the result
// stable for a given store snapshot.
func buildSearch(q SearchQuery) (string, []any) {
	sel := `SELECT ` + listingColumns
	var args []any

	if q.geoFiltered() {
		sel += `, ` + haversineExpr + ` AS calc_distance`
		args = append(args, *q.Lat, *q.Lat, *q.Lng)
	}

	clauses := []clause{
		{sql: "latitude IS NOT NULL AND longitude IS NOT NULL"},
	}

	if q.geoFiltered() {
		clauses = append(clauses, clause{
			sql:  haversineExpr + ` <= ?`,
			args: []any{*q.Lat, *q.Lat, *q.Lng, *q.Radius},
		})
	}

	if len(q.Cuisines) > 0 {
		likes := make([]string, 0, len(q.Cuisines))
		var likeArgs []any
		for _, c := range q.Cuisines {
			likes = append(likes, "LOWER(cuisine) LIKE ?")
			likeArgs = append(likeArgs, "%"+strings.ToLower(strings.TrimSpace(c))+"%")
		}
		// The sentinel cuisine "All" matches every cuisine filter.
		clauses = append(clauses, clause{
			sql:  "(" + strings.Join(likes, " OR ") + " OR LOWER(cuisine) = 'all')",
			args: likeArgs,
		})
	}

	if q.MinBags != nil {
		clauses = append(clauses, clause{sql: "number_of_bags >= ?", args: []any{*q.MinBags}})
	}

	conds := make([]string, 0, len(clauses))
	for _, c := range clauses {
		conds = append(conds, c.sql)
		args = append(args, c.args...)
	}

	query := sel + ` FROM food_items WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY id`
	return query, args
}

// Search executes a filtered listing query. The computed distance, when
// a geo filter is present, is returned on each listing for display and
// client-side sorting.
func (r *ListingRepo) Search(ctx context.Context, q SearchQuery) ([]model.Listing, error) {
	query, args := buildSearch(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	withDistance := q.geoFiltered()
	out := make([]model.Listing, 0)
	for rows.Next() {
		var l model.Listing
		var err error
		if withDistance {
			var dist float64
			l, err = scanListingWith(rows.Scan, &dist)
			if err == nil {
				l.Distance = &dist
			}
		} else {
			l, err = scanListing(rows.Scan)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanListingWith scans the listing columns followed by extra trailing
// columns (the computed distance).
func scanListingWith(scan func(dest ...any) error, extra ...any) (model.Listing, error) {
	return scanListing(func(dest ...any) error {
		return scan(append(dest, extra...)...)
	})
}

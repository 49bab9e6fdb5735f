package query

import (
	"sort"

	"github.com/gartstein/companies/internal/company/models"
)

// Filter returns the companies matching q, sorted by q's order. The input is
// not modified.
func Filter(q Query, companies []models.Company) []models.Company {
	out := make([]models.Company, 0, len(companies))
	for i := range companies {
		if q.Matches(&companies[i]) {
			out = append(out, companies[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return q.Less(&out[i], &out[j])
	})
	return out
}

// Evaluate runs the whole pipeline in memory: filter, sort, then slice the
// requested page. It returns the page and the number of matching companies.
func Evaluate(q Query, companies []models.Company) ([]models.Company, int) {
	matched := Filter(q, companies)
	total := len(matched)

	start := q.Offset()
	if start < 0 || start >= total {
		return []models.Company{}, total
	}
	end := total
	if limit := q.Limit(); limit >= 0 && limit < total-start {
		end = start + limit
	}
	return matched[start:end], total
}

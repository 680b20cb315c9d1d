package ideacount

import (
	"net/http"
	"strings"

	"github.com/dalemusser/ideatrack/internal/app/store/queries/ideaqueries"
	"github.com/dalemusser/waffle/pantry/query"
)

// filterQuery holds the hierarchy filter shared by the list and total endpoints.
// The ids are opaque: a value that names nothing simply matches no
// organization, so they are never rejected.
type filterQuery struct {
	ZoneID     string
	DistrictID string
	OrgType    string
}

func (q filterQuery) filter() ideaqueries.Filter {
	return ideaqueries.NewFilter(q.ZoneID, q.DistrictID, q.OrgType)
}

// listQuery adds the report granularity.
type listQuery struct {
	filterQuery
	Type string `validate:"omitempty,oneof=organization district zone intern"`
}

func readFilterQuery(r *http.Request) filterQuery {
	return filterQuery{
		ZoneID:     strings.TrimSpace(query.Get(r, "zone_id")),
		DistrictID: strings.TrimSpace(query.Get(r, "district_id")),
		OrgType:    strings.TrimSpace(query.Get(r, "org_type")),
	}
}

func readListQuery(r *http.Request) listQuery {
	return listQuery{
		filterQuery: readFilterQuery(r),
		Type:        strings.ToLower(strings.TrimSpace(query.Get(r, "type"))),
	}
}

package ideaqueries

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Filter narrows the organization set before aggregation. Empty fields add no
// constraint; supplied fields are ANDed together. Ids that match nothing yield
// an empty set, never an error.
type Filter struct {
	ZoneID     string
	DistrictID string
	OrgType    string
}

// NewFilter trims the raw request values.
func NewFilter(zoneID, districtID, orgType string) Filter {
	return Filter{
		ZoneID:     strings.TrimSpace(zoneID),
		DistrictID: strings.TrimSpace(districtID),
		OrgType:    strings.TrimSpace(orgType),
	}
}

// IsZero reports whether the filter leaves the organization set unrestricted.
func (f Filter) IsZero() bool {
	return f.ZoneID == "" && f.DistrictID == "" && f.OrgType == ""
}

// needsDistrict reports whether the predicate reads the joined district.
func (f Filter) needsDistrict() bool {
	return f.ZoneID != ""
}

// Match builds the predicate for an organization document found at prefix
// ("" for the organizations collection itself, "org." when the organization
// was joined onto another document). The zone clause reads
// <prefix>district.zone_id, so the district must have been joined there.
func (f Filter) Match(prefix string) bson.M {
	m := bson.M{}
	if f.ZoneID != "" {
		m[prefix+"district.zone_id"] = f.ZoneID
	}
	if f.DistrictID != "" {
		m[prefix+"district_id"] = f.DistrictID
	}
	if f.OrgType != "" {
		m[prefix+"org_type"] = f.OrgType
	}
	return m
}

// orgStages returns the pipeline prefix that selects the filtered organizations
// from the organizations collection. The district is joined at "district" when
// the filter or the caller needs it.
func (f Filter) orgStages(withDistrict bool) []bson.M {
	var stages []bson.M

	// district_id and org_type live on the organization itself, so they can
	// narrow the set before the join.
	if local := (Filter{DistrictID: f.DistrictID, OrgType: f.OrgType}).Match(""); len(local) > 0 {
		stages = append(stages, bson.M{"$match": local})
	}

	if withDistrict || f.needsDistrict() {
		stages = append(stages,
			bson.M{"$lookup": bson.M{
				"from":         "districts",
				"localField":   "district_id",
				"foreignField": "_id",
				"as":           "district",
			}},
			bson.M{"$unwind": bson.M{"path": "$district", "preserveNullAndEmptyArrays": true}},
		)
	}

	if f.needsDistrict() {
		stages = append(stages, bson.M{"$match": Filter{ZoneID: f.ZoneID}.Match("")})
	}
	return stages
}

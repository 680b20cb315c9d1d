// Package ideaqueries provides the read-only aggregation queries behind the
// idea-count reports.
//
// Organization, district and zone granularities sum the four counters across
// every organization in the group. Intern granularity does not: it emits one
// row per user-organization link carrying that organization's raw counters, so
// an organization with three interns appears three times with the same values.
package ideaqueries

import (
	"context"
	"fmt"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Granularity is the grouping level of a report.
type Granularity string

const (
	ByOrganization Granularity = "organization"
	ByDistrict     Granularity = "district"
	ByZone         Granularity = "zone"
	ByIntern       Granularity = "intern"
)

// Granularities lists every supported grouping level.
var Granularities = []Granularity{ByOrganization, ByDistrict, ByZone, ByIntern}

// ParseGranularity maps a request value to a Granularity. Empty means
// ByOrganization; anything unknown returns ok=false.
func ParseGranularity(s string) (Granularity, bool) {
	if s == "" {
		return ByOrganization, true
	}
	for _, g := range Granularities {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// OrgRow is one organization: name is "<code> - <title>".
type OrgRow struct {
	ID             string `bson:"_id" json:"-"`
	Name           string `bson:"name" json:"name"`
	models.Metrics `bson:",inline"`
}

// DistrictRow sums every organization in one district.
type DistrictRow struct {
	ID             string `bson:"_id" json:"-"`
	District       string `bson:"district" json:"district"`
	Zone           string `bson:"zone" json:"zone"`
	models.Metrics `bson:",inline"`
}

// ZoneRow sums every organization in one zone.
type ZoneRow struct {
	ID             string `bson:"_id" json:"-"`
	Zone           string `bson:"zone" json:"zone"`
	models.Metrics `bson:",inline"`
}

// InternRow is one user-organization link with the organization's counters.
type InternRow struct {
	ID             string `bson:"_id" json:"-"`
	FullName       string `bson:"full_name" json:"full_name"`
	Email          string `bson:"email" json:"email"`
	models.Metrics `bson:",inline"`
}

// coalesced returns $ifNull(<path>, 0) for each counter, read from prefix.
func coalesced(prefix string) bson.M {
	out := bson.M{}
	for _, f := range models.MetricFields {
		out[f] = bson.M{"$ifNull": bson.A{"$" + prefix + f, 0}}
	}
	return out
}

// sums returns the $group accumulators for the four counters. $sum treats
// missing values as 0, so groups never carry nulls.
func sums() bson.M {
	out := bson.M{}
	for _, f := range models.MetricFields {
		out[f] = bson.M{"$sum": "$" + f}
	}
	return out
}

func ifNullString(path string) bson.M {
	return bson.M{"$ifNull": bson.A{path, ""}}
}

// zoneJoin resolves zone_id on the current documents into a zone name.
func zoneJoin(localField string) []bson.M {
	return []bson.M{
		{"$lookup": bson.M{
			"from":         "zones",
			"localField":   localField,
			"foreignField": "_id",
			"as":           "zone_doc",
		}},
		{"$unwind": bson.M{"path": "$zone_doc", "preserveNullAndEmptyArrays": true}},
	}
}

// OrganizationCounts returns one row per filtered organization.
func OrganizationCounts(ctx context.Context, db *mongo.Database, f Filter) ([]OrgRow, error) {
	project := coalesced("")
	project["name"] = bson.M{"$concat": bson.A{ifNullString("$code"), " - ", ifNullString("$title")}}

	pipeline := f.orgStages(false)
	pipeline = append(pipeline,
		bson.M{"$project": project},
		bson.M{"$sort": bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
	)

	var rows []OrgRow
	if err := aggregate(ctx, db.Collection("organizations"), pipeline, &rows); err != nil {
		return nil, fmt.Errorf("organization counts: %w", err)
	}
	return rows, nil
}

// DistrictCounts returns one row per district that has at least one filtered organization.
func DistrictCounts(ctx context.Context, db *mongo.Database, f Filter) ([]DistrictRow, error) {
	group := sums()
	group["_id"] = "$district_id"
	group["district"] = bson.M{"$first": "$district.name"}
	group["zone_id"] = bson.M{"$first": "$district.zone_id"}

	project := coalesced("")
	project["district"] = ifNullString("$district")
	project["zone"] = ifNullString("$zone_doc.name")

	pipeline := f.orgStages(true)
	pipeline = append(pipeline, bson.M{"$group": group})
	pipeline = append(pipeline, zoneJoin("zone_id")...)
	pipeline = append(pipeline,
		bson.M{"$project": project},
		bson.M{"$sort": bson.D{{Key: "district", Value: 1}, {Key: "_id", Value: 1}}},
	)

	var rows []DistrictRow
	if err := aggregate(ctx, db.Collection("organizations"), pipeline, &rows); err != nil {
		return nil, fmt.Errorf("district counts: %w", err)
	}
	return rows, nil
}

// ZoneCounts returns one row per zone that has at least one filtered organization.
func ZoneCounts(ctx context.Context, db *mongo.Database, f Filter) ([]ZoneRow, error) {
	group := sums()
	group["_id"] = "$district.zone_id"

	project := coalesced("")
	project["zone"] = ifNullString("$zone_doc.name")

	pipeline := f.orgStages(true)
	pipeline = append(pipeline, bson.M{"$group": group})
	pipeline = append(pipeline, zoneJoin("_id")...)
	pipeline = append(pipeline,
		bson.M{"$project": project},
		bson.M{"$sort": bson.D{{Key: "zone", Value: 1}, {Key: "_id", Value: 1}}},
	)

	var rows []ZoneRow
	if err := aggregate(ctx, db.Collection("organizations"), pipeline, &rows); err != nil {
		return nil, fmt.Errorf("zone counts: %w", err)
	}
	return rows, nil
}

// linkStages joins each user_org_links document to its organization at "org"
// and keeps the links whose organization passes f.
func linkStages(f Filter) []bson.M {
	stages := []bson.M{
		{"$lookup": bson.M{
			"from":         "organizations",
			"localField":   "org_id",
			"foreignField": "_id",
			"as":           "org",
		}},
		{"$unwind": "$org"},
	}
	if f.IsZero() {
		return stages
	}
	if f.needsDistrict() {
		stages = append(stages,
			bson.M{"$lookup": bson.M{
				"from":         "districts",
				"localField":   "org.district_id",
				"foreignField": "_id",
				"as":           "org.district",
			}},
			bson.M{"$unwind": bson.M{"path": "$org.district", "preserveNullAndEmptyArrays": true}},
		)
	}
	return append(stages, bson.M{"$match": f.Match("org.")})
}

// InternCounts returns one row per user-organization link whose organization
// passes the filter. Rows are not collapsed by organization.
func InternCounts(ctx context.Context, db *mongo.Database, f Filter) ([]InternRow, error) {
	pipeline := linkStages(f)

	// First and last name are joined with no separator.
	project := coalesced("org.")
	project["full_name"] = bson.M{"$concat": bson.A{ifNullString("$user.first_name"), ifNullString("$user.last_name")}}
	project["email"] = ifNullString("$user.email")

	pipeline = append(pipeline,
		bson.M{"$lookup": bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}},
		bson.M{"$unwind": "$user"},
		bson.M{"$project": project},
		bson.M{"$sort": bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}}},
	)

	var rows []InternRow
	if err := aggregate(ctx, db.Collection("user_org_links"), pipeline, &rows); err != nil {
		return nil, fmt.Errorf("intern counts: %w", err)
	}
	return rows, nil
}

// Totals sums the four counters over every filtered organization. No match
// yields all zeros.
func Totals(ctx context.Context, db *mongo.Database, f Filter) (models.Metrics, error) {
	group := sums()
	group["_id"] = nil

	pipeline := f.orgStages(false)
	pipeline = append(pipeline, bson.M{"$group": group})

	var rows []models.Metrics
	if err := aggregate(ctx, db.Collection("organizations"), pipeline, &rows); err != nil {
		return models.Metrics{}, fmt.Errorf("idea totals: %w", err)
	}
	if len(rows) == 0 {
		return models.Metrics{}, nil
	}
	return rows[0], nil
}

func aggregate(ctx context.Context, c *mongo.Collection, pipeline []bson.M, out any) error {
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

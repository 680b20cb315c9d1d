// internal/domain/models/organization.go
package models

import "time"

// Organization is the leaf of the hierarchy that carries the activity counters.
// Code is globally unique and is the key used by tabular imports.
type Organization struct {
	ID         string `bson:"_id" json:"id"`
	Code       string `bson:"code" json:"code"`
	Title      string `bson:"title" json:"title"`
	OrgType    string `bson:"org_type" json:"org_type"`
	DistrictID string `bson:"district_id" json:"district_id"`

	Metrics `bson:",inline"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

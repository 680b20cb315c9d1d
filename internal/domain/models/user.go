// internal/domain/models/user.go
package models

import "time"

// User is the minimal identity record the reports read.
// Accounts are created by the registration service; this service never writes them
// outside of tests and the admin tool.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	FirstName string    `bson:"first_name" json:"first_name"`
	LastName  string    `bson:"last_name" json:"last_name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// UserOrgLink assigns an intern (User) to an Organization.
type UserOrgLink struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	OrgID     string    `bson:"org_id" json:"org_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Package models contains domain models for the Haven support service.
package models

// RoleProfessional is the directory role of a licensed professional.
const RoleProfessional = "professional"

// Professional is the directory view of a user holding the professional
// role. User storage and authentication live in an external service; the
// core only reads this projection.
type Professional struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email" bson:"email"`
}

// DisplayName returns the name shown to users, falling back to the id
// when the directory record has no username.
func (p *Professional) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.ID
}

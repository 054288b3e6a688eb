package entity

import "time"

type User struct {
	Id        int64     `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"` // Don't expose password in JSON
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// UserSnapshot is the read-only identity handed to message transformations.
type UserSnapshot struct {
	Id          int64  `json:"id"`
	DisplayName string `json:"displayName"`
}

func (u User) Snapshot() UserSnapshot {
	return UserSnapshot{Id: u.Id, DisplayName: u.Name}
}

package models

import "time"

type User struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Title     string    `json:"title" bson:"title"`
	Role      string    `json:"role" bson:"role"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	IsAdmin   bool      `json:"isAdmin" bson:"isAdmin"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	Tasks     []string  `json:"tasks" bson:"tasks"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// UserSummary is the projection of a user embedded in task responses.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Title: u.Title, Role: u.Role, Email: u.Email}
}

// ActiveUser is the projection shown on the admin dashboard.
type ActiveUser struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

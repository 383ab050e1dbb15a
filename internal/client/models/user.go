// Package models defines client-side data models of the session layer.
package models

// User is the identity record returned by the backend on login and token
// validation. Fields the client does not know about are ignored.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// LoginResult is the successful outcome of a login call.
type LoginResult struct {
	Token string
	User  *User
}

package model

// User roles as stored in the session.
const (
	RoleEmployee = "Employee"
	RoleAdmin    = "Admin"
)

// Session is the authenticated user's identity for the current browser
// context. It is created at login, carried in a signed cookie, and read
// by the router and page handlers to gate access and fill in the bill
// owner's email.
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email,omitempty"`
}

package domain

// Principal is the authenticated identity attached to a single request.
// It is derived from a validated bearer token and never persisted.
type Principal struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Admin     bool
}

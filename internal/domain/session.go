package domain

// Session is the in-memory record of the current auth token and user id.
// Empty strings mean absent.
type Session struct {
	AuthToken string
	UserID    string
}

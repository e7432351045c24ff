package domain

// Pocket is a user's personal collection of bookmarked posts. Every user
// owns exactly one, created at signup.
type Pocket struct {
	ID     int64
	UserID int64
	Posts  []Post
}

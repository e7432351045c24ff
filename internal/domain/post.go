package domain

import "time"

// Post is an authored article. Validated marks posts approved by an admin;
// unvalidated posts are hidden from non-admin listings.
type Post struct {
	ID          int64
	UserID      int64
	Title       string
	Tags        []string
	Description string
	Photo       string
	Content     string
	ReadTime    int
	Validated   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author   *UserSummary
	Feedback []Feedback
}

package domain

import "time"

// FeedbackType distinguishes likes from comments.
type FeedbackType string

const (
	FeedbackLike    FeedbackType = "like"
	FeedbackComment FeedbackType = "comment"
)

// Feedback is a like or comment attached to a post. Likes carry no content.
type Feedback struct {
	ID        int64
	UserID    int64
	PostID    int64
	Type      FeedbackType
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	Author *UserSummary
}

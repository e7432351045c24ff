package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

const createFeedbackTable = `
CREATE TABLE IF NOT EXISTS feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createFeedbackPostIndex = `CREATE INDEX IF NOT EXISTS idx_feedback_post ON feedback(post_id);`

const feedbackSelect = `
SELECT f.id, f.user_id, f.post_id, f.type, f.content, f.created_at, f.updated_at,
       u.id, u.firstname, u.lastname, u.photo
FROM feedback f
LEFT JOIN users u ON u.id = f.user_id`

var feedbackQueryColumns = map[string]string{
	"type":      "f.type",
	"createdAt": "f.created_at",
	"updatedAt": "f.updated_at",
}

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) repository.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFeedbackTable); err != nil {
		return fmt.Errorf("create feedback table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createFeedbackPostIndex); err != nil {
		return fmt.Errorf("create feedback index: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) (int64, error) {
	now := time.Now().UTC()
	fb.CreatedAt = now
	fb.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO feedback (user_id, post_id, type, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		fb.UserID,
		fb.PostID,
		string(fb.Type),
		fb.Content,
		fb.CreatedAt,
		fb.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("feedback last insert id: %w", err)
	}
	fb.ID = id
	return id, nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id int64) (*domain.Feedback, error) {
	row := r.db.QueryRowContext(ctx, feedbackSelect+` WHERE f.id = ?`, id)
	return scanFeedback(row)
}

func (r *FeedbackRepository) ListByPost(ctx context.Context, postID int64, d query.Directives) ([]domain.Feedback, error) {
	t := query.Translate(d, feedbackQueryColumns)

	where := "f.post_id = ?"
	args := []any{postID}
	if t.Where != "" {
		where += " AND " + t.Where
		args = append(args, t.Args...)
	}

	sqlQuery := feedbackSelect + ` WHERE ` + where + ` ORDER BY ` + t.OrderBy + ` LIMIT ? OFFSET ?`
	args = append(args, t.Limit, t.Offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *fb)
	}
	return items, rows.Err()
}

func (r *FeedbackRepository) AllByPost(ctx context.Context, postID int64) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, feedbackSelect+` WHERE f.post_id = ? ORDER BY f.created_at ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *fb)
	}
	return items, rows.Err()
}

func (r *FeedbackRepository) HasLike(ctx context.Context, userID, postID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1) FROM feedback
WHERE user_id = ? AND post_id = ? AND type = ?`,
		userID, postID, string(domain.FeedbackLike),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count likes: %w", err)
	}
	return n > 0, nil
}

func (r *FeedbackRepository) Update(ctx context.Context, fb *domain.Feedback) error {
	fb.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE feedback
SET content=?, updated_at=?
WHERE id=?`,
		fb.Content,
		fb.UpdatedAt,
		fb.ID,
	)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	return requireAffected(res, "feedback")
}

func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireAffected(res, "feedback")
}

func scanFeedback(row interface {
	Scan(dest ...any) error
}) (*domain.Feedback, error) {
	var (
		fb              domain.Feedback
		fbType          string
		authorID        sql.NullInt64
		authorFirstname sql.NullString
		authorLastname  sql.NullString
		authorPhoto     sql.NullString
	)
	if err := row.Scan(
		&fb.ID,
		&fb.UserID,
		&fb.PostID,
		&fbType,
		&fb.Content,
		&fb.CreatedAt,
		&fb.UpdatedAt,
		&authorID,
		&authorFirstname,
		&authorLastname,
		&authorPhoto,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("feedback %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan feedback: %w", err)
	}

	fb.Type = domain.FeedbackType(fbType)
	if authorID.Valid {
		fb.Author = &domain.UserSummary{
			ID:        authorID.Int64,
			Firstname: authorFirstname.String,
			Lastname:  authorLastname.String,
			Photo:     authorPhoto.String,
		}
	}
	return &fb, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	photo TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	read_time INTEGER NOT NULL DEFAULT 1,
	validated INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createPostsUserIndex = `CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id);`

// postSelect joins the author display fields at read time instead of hiding
// the composition in a store hook.
const postSelect = `
SELECT p.id, p.user_id, p.title, p.tags, p.description, p.photo, p.content, p.read_time, p.validated, p.created_at, p.updated_at,
       u.id, u.firstname, u.lastname, u.photo
FROM posts p
LEFT JOIN users u ON u.id = p.user_id`

var postQueryColumns = map[string]string{
	"title":     "p.title",
	"readTime":  "p.read_time",
	"validated": "p.validated",
	"createdAt": "p.created_at",
	"updatedAt": "p.updated_at",
}

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPostsUserIndex); err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (user_id, title, tags, description, photo, content, read_time, validated, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.UserID,
		post.Title,
		tags,
		post.Description,
		post.Photo,
		post.Content,
		post.ReadTime,
		post.Validated,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context, d query.Directives, onlyValidated bool) ([]domain.Post, error) {
	t := query.Translate(d, postQueryColumns)

	where := t.Where
	args := t.Args
	if onlyValidated {
		if where != "" {
			where += " AND "
		}
		where += "p.validated = 1"
	}

	sqlQuery := postSelect
	if where != "" {
		sqlQuery += ` WHERE ` + where
	}
	sqlQuery += ` ORDER BY ` + t.OrderBy + ` LIMIT ? OFFSET ?`
	args = append(args, t.Limit, t.Offset)

	return r.queryPosts(ctx, sqlQuery, args...)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	return r.queryPosts(ctx, postSelect+` WHERE p.user_id = ? ORDER BY p.created_at DESC`, userID)
}

func (r *PostRepository) queryPosts(ctx context.Context, sqlQuery string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET title=?, tags=?, description=?, photo=?, content=?, read_time=?, validated=?, updated_at=?
WHERE id=?`,
		post.Title,
		tags,
		post.Description,
		post.Photo,
		post.Content,
		post.ReadTime,
		post.Validated,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireAffected(res, "post")
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res, "post")
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var (
		post            domain.Post
		tags            string
		authorID        sql.NullInt64
		authorFirstname sql.NullString
		authorLastname  sql.NullString
		authorPhoto     sql.NullString
	)
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&tags,
		&post.Description,
		&post.Photo,
		&post.Content,
		&post.ReadTime,
		&post.Validated,
		&post.CreatedAt,
		&post.UpdatedAt,
		&authorID,
		&authorFirstname,
		&authorLastname,
		&authorPhoto,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
			return nil, fmt.Errorf("decode post tags: %w", err)
		}
	}
	if authorID.Valid {
		post.Author = &domain.UserSummary{
			ID:        authorID.Int64,
			Firstname: authorFirstname.String,
			Lastname:  authorLastname.String,
			Photo:     authorPhoto.String,
		}
	}
	return &post, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode post tags: %w", err)
	}
	return string(raw), nil
}

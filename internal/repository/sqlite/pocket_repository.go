package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blogmanity/internal/domain"
	"blogmanity/internal/repository"
)

const createPocketsTable = `
CREATE TABLE IF NOT EXISTS pockets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE
);
`

const createPocketPostsTable = `
CREATE TABLE IF NOT EXISTS pocket_posts (
	pocket_id INTEGER NOT NULL REFERENCES pockets(id) ON DELETE CASCADE,
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	PRIMARY KEY (pocket_id, post_id)
);
`

type PocketRepository struct {
	db *sql.DB
}

func NewPocketRepository(db *sql.DB) repository.PocketRepository {
	return &PocketRepository{db: db}
}

func (r *PocketRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPocketsTable); err != nil {
		return fmt.Errorf("create pockets table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPocketPostsTable); err != nil {
		return fmt.Errorf("create pocket posts table: %w", err)
	}
	return nil
}

func (r *PocketRepository) Create(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO pockets (user_id) VALUES (?)`, userID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("pocket %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert pocket: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("pocket last insert id: %w", err)
	}
	return id, nil
}

func (r *PocketRepository) GetByUser(ctx context.Context, userID int64) (*domain.Pocket, error) {
	pocket := &domain.Pocket{UserID: userID}
	err := r.db.QueryRowContext(ctx, `SELECT id FROM pockets WHERE user_id = ?`, userID).Scan(&pocket.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pocket %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan pocket: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, postSelect+`
JOIN pocket_posts pp ON pp.post_id = p.id
WHERE pp.pocket_id = ?
ORDER BY p.created_at DESC`,
		pocket.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pocket posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		pocket.Posts = append(pocket.Posts, *post)
	}
	return pocket, rows.Err()
}

func (r *PocketRepository) Contains(ctx context.Context, pocketID, postID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1) FROM pocket_posts WHERE pocket_id = ? AND post_id = ?`,
		pocketID, postID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count pocket posts: %w", err)
	}
	return n > 0, nil
}

func (r *PocketRepository) AddPost(ctx context.Context, pocketID, postID int64) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pocket_posts (pocket_id, post_id) VALUES (?, ?)`,
		pocketID, postID,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("pocket post %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert pocket post: %w", err)
	}
	return nil
}

func (r *PocketRepository) RemovePost(ctx context.Context, pocketID, postID int64) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM pocket_posts WHERE pocket_id = ? AND post_id = ?`,
		pocketID, postID,
	)
	if err != nil {
		return fmt.Errorf("delete pocket post: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	firstname TEXT NOT NULL,
	lastname TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	photo TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	active INTEGER NOT NULL DEFAULT 1,
	password_changed_at DATETIME NULL,
	reset_token_hash TEXT NOT NULL DEFAULT '',
	reset_token_expires_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const userColumns = `id, firstname, lastname, email, photo, password_hash, role, active, password_changed_at, reset_token_hash, reset_token_expires_at, created_at, updated_at`

// userQueryColumns is the filter/sort allow-list exposed to list requests.
var userQueryColumns = map[string]string{
	"firstname": "firstname",
	"lastname":  "lastname",
	"email":     "email",
	"role":      "role",
	"active":    "active",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (firstname, lastname, email, photo, password_hash, role, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Firstname,
		user.Lastname,
		user.Email,
		user.Photo,
		user.PasswordHash,
		string(user.Role),
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("user %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, d query.Directives) ([]domain.User, error) {
	t := query.Translate(d, userQueryColumns)

	sqlQuery := `SELECT ` + userColumns + ` FROM users`
	if t.Where != "" {
		sqlQuery += ` WHERE ` + t.Where
	}
	sqlQuery += ` ORDER BY ` + t.OrderBy + ` LIMIT ? OFFSET ?`
	args := append(t.Args, t.Limit, t.Offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET firstname=?, lastname=?, email=?, photo=?, role=?, active=?, updated_at=?
WHERE id=?`,
		user.Firstname,
		user.Lastname,
		user.Email,
		user.Photo,
		string(user.Role),
		user.Active,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("user %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, "user")
}

func (r *UserRepository) SetPassword(ctx context.Context, id int64, hash string, changedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET password_hash=?, password_changed_at=?, reset_token_hash='', reset_token_expires_at=NULL, updated_at=?
WHERE id=?`,
		hash,
		changedAt.UTC(),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return requireAffected(res, "user")
}

func (r *UserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET reset_token_hash=?, reset_token_expires_at=?, updated_at=?
WHERE id=?`,
		tokenHash,
		expiresAt.UTC(),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return requireAffected(res, "user")
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET reset_token_hash='', reset_token_expires_at=NULL, updated_at=?
WHERE id=?`,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return requireAffected(res, "user")
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET active=?, updated_at=?
WHERE id=?`,
		active,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireAffected(res, "user")
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, "user")
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user              domain.User
		role              string
		passwordChangedAt sql.NullTime
		resetExpiresAt    sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.Photo,
		&user.PasswordHash,
		&role,
		&user.Active,
		&passwordChangedAt,
		&user.ResetTokenHash,
		&resetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.Role = domain.Role(role)
	if passwordChangedAt.Valid {
		t := passwordChangedAt.Time
		user.PasswordChangedAt = &t
	}
	if resetExpiresAt.Valid {
		t := resetExpiresAt.Time
		user.ResetTokenExpiresAt = &t
	}
	return &user, nil
}

func requireAffected(res sql.Result, entity string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s %w", entity, repository.ErrNotFound)
	}
	return nil
}

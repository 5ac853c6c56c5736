package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

// userRepo implements UserRepo on the users table.
type userRepo struct {
	db *sql.DB
}

var userSelectColumns = []string{
	"id",
	"email",
	"password_hash",
	"username",
	"profile_pic_url",
	"is_onboarded",
	"created_at",
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	query, args := builder().Insert(usersTable.Name).
		Columns(userSelectColumns...).
		Values(u.ID, u.Email, u.PasswordHash, nullable(u.Username), nullable(u.ProfilePicURL), u.IsOnboarded, u.CreatedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %q: %w", u.Email, ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepo) ByID(ctx context.Context, id string) (*User, error) {
	return r.findBy(ctx, "id", id)
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *userRepo) ByUsername(ctx context.Context, username string) (*User, error) {
	return r.findBy(ctx, "username", username)
}

func (r *userRepo) Update(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	ub := builder().Update(usersTable.Name).Where(entsql.EQ("id", id))
	if upd.Username.Set {
		ub.Set("username", upd.Username.sqlValue())
	}
	if upd.ProfilePicURL.Set {
		ub.Set("profile_pic_url", upd.ProfilePicURL.sqlValue())
	}
	if upd.IsOnboarded.Set {
		ub.Set("is_onboarded", upd.IsOnboarded.sqlValue())
	}
	if ub.Empty() {
		return r.ByID(ctx, id)
	}

	query, args := ub.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update user %q: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("update user %q: %w", id, ErrNotFound)
	}
	return r.ByID(ctx, id)
}

func (r *userRepo) findBy(ctx context.Context, column, value string) (*User, error) {
	b := builder()
	query, args := b.Select(userSelectColumns...).
		From(b.Table(usersTable.Name)).
		Where(entsql.EQ(column, value)).
		Query()

	var (
		u        User
		username sql.NullString
		picURL   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&username,
		&picURL,
		&u.IsOnboarded,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s=%q: %w", column, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if username.Valid {
		u.Username = &username.String
	}
	if picURL.Valid {
		u.ProfilePicURL = &picURL.String
	}
	return &u, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// isUniqueViolation matches SQLite's constraint message; modernc does not
// export a typed error for it.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

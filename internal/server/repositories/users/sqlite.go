package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository stores users in SQLite. joined is kept as unix seconds.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (user_id, name, email, password_hash, about_me, joined, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`

	joined := r.now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, query,
		user.UserID, user.Name, user.Email, user.PasswordHash, user.AboutMe, joined.Unix(), user.IsActive)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Joined = joined
	return user, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT user_id, name, email, password_hash, about_me, joined, is_active
		 FROM users
		 WHERE email = ?`

	user := &models.User{}
	var (
		aboutMe sql.NullString
		joined  int64
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID, &user.Name, &user.Email, &user.PasswordHash, &aboutMe, &joined, &user.IsActive)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if aboutMe.Valid {
		user.AboutMe = &aboutMe.String
	}
	user.Joined = time.Unix(joined, 0).UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

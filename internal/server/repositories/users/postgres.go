package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (user_id, name, email, password_hash, about_me, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING joined`

	err := r.db.QueryRowContext(ctx, query,
		user.UserID, user.Name, user.Email, user.PasswordHash, user.AboutMe, user.IsActive).Scan(&user.Joined)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT user_id, name, email, password_hash, about_me, joined, is_active
		 FROM users
		 WHERE email = $1`

	user := &models.User{}
	var aboutMe sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID, &user.Name, &user.Email, &user.PasswordHash, &aboutMe, &user.Joined, &user.IsActive)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if aboutMe.Valid {
		user.AboutMe = &aboutMe.String
	}
	return user, nil
}

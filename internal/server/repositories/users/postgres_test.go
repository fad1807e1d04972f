package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(user_id,\s*name,\s*email,\s*password_hash,\s*about_me,\s*is_active\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+joined\s*$`
	selectQuery = `(?s)^SELECT\s+user_id,\s*name,\s*email,\s*password_hash,\s*about_me,\s*joined,\s*is_active\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func ada() *models.User {
	return &models.User{UserID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: []byte("hash"), IsActive: true}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	joined := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQuery).
		WithArgs("u1", "Ada", "ada@example.com", []byte("hash"), nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"joined"}).AddRow(joined))

	got, err := repo.Create(context.Background(), ada())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.UserID != "u1" || got.Email != "ada@example.com" || !got.Joined.Equal(joined) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), ada())
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
	if !regexp.MustCompile(`users_email_key`).MatchString(err.Error()) {
		t.Fatalf("constraint name missing from %v", err)
	}
}

func TestCreate_OtherPgError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})

	_, err := repo.Create(context.Background(), ada())
	if err == nil || errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected plain db error, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), ada())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	joined := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "name", "email", "password_hash", "about_me", "joined", "is_active"}).
		AddRow("u1", "Ada", "ada@example.com", []byte("hash"), "analyst", joined, true)
	mock.ExpectQuery(selectQuery).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	got, err := repo.GetUserByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got.UserID != "u1" || got.Name != "Ada" || string(got.PasswordHash) != "hash" || !got.IsActive {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.AboutMe == nil || *got.AboutMe != "analyst" {
		t.Fatalf("unexpected about_me: %v", got.AboutMe)
	}
}

func TestGetUserByEmail_NullAboutMe(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "name", "email", "password_hash", "about_me", "joined", "is_active"}).
		AddRow("u1", "Ada", "ada@example.com", []byte("hash"), nil, time.Now(), true)
	mock.ExpectQuery(selectQuery).WithArgs("ada@example.com").WillReturnRows(rows)

	got, err := repo.GetUserByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got.AboutMe != nil {
		t.Fatalf("want nil about_me, got %q", *got.AboutMe)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).
		WithArgs("ada@example.com").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByEmail(context.Background(), "ada@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("storage failure must not look like not found")
	}
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"contacthub/internal/common"
	"contacthub/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userCols = []string{"id", "username", "email", "hashed_password", "avatar", "confirmed", "role", "created_at"}

func TestUserRepository_FindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, hashed_password, avatar, confirmed, role, created_at FROM users WHERE username = $1`)).
		WithArgs("agent007").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "agent007", "agent007@gmail.com", "$2a$10$hash", nil, true, "user", time.Now()))

	user, err := repo.FindByUsername(context.Background(), "agent007")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if user.ID != 1 || user.Username != "agent007" || user.Role != model.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Avatar != "" {
		t.Fatalf("NULL avatar should scan to empty string, got %q", user.Avatar)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = repo.FindByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_Create_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), &model.User{
		Username:       "agent007",
		Email:          "agent007@gmail.com",
		HashedPassword: "$2a$10$hash",
		Role:           model.RoleUser,
	})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserRepository_SetConfirmed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`UPDATE users SET confirmed = TRUE WHERE email`).
		WithArgs("agent007@gmail.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "agent007", "agent007@gmail.com", "$2a$10$hash", nil, true, "user", time.Now()))

	user, err := repo.SetConfirmed(context.Background(), "agent007@gmail.com")
	if err != nil {
		t.Fatalf("SetConfirmed: %v", err)
	}
	if !user.Confirmed {
		t.Fatalf("expected confirmed user, got %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetAvatar_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(`UPDATE users SET avatar`).
		WithArgs("https://example.com/a.png", "ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = repo.SetAvatar(context.Background(), "ghost@example.com", "https://example.com/a.png")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

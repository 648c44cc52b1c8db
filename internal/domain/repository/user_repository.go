package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contacthub/internal/common"
	"contacthub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository is the durable store for principals. The auth core only
// reads and requests targeted field updates; each setter returns the
// updated row or common.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	SetConfirmed(ctx context.Context, email string) (*model.User, error)
	SetPasswordHash(ctx context.Context, email, hash string) (*model.User, error)
	SetAvatar(ctx context.Context, email, avatarURL string) (*model.User, error)
}

const userColumns = `id, username, email, hashed_password, avatar, confirmed, role, created_at`

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var avatar sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&avatar, &user.Confirmed, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	user.Avatar = avatar.String
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	query := `INSERT INTO users (username, email, hashed_password, avatar, confirmed, role)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	          RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.HashedPassword, user.Avatar, user.Confirmed, user.Role,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return nil, fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return created, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) SetConfirmed(ctx context.Context, email string) (*model.User, error) {
	query := `UPDATE users SET confirmed = TRUE WHERE email = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.SetConfirmed: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) SetPasswordHash(ctx context.Context, email, hash string) (*model.User, error) {
	query := `UPDATE users SET hashed_password = $1 WHERE email = $2 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, hash, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.SetPasswordHash: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) SetAvatar(ctx context.Context, email, avatarURL string) (*model.User, error) {
	query := `UPDATE users SET avatar = $1 WHERE email = $2 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, avatarURL, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.SetAvatar: %w", err)
	}
	return user, nil
}

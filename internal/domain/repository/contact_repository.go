package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"contacthub/internal/common"
	"contacthub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// ContactFilter narrows List results. Zero values mean "no filter".
type ContactFilter struct {
	Search              string
	BirthdaysWithinDays int
	Skip                int
	Limit               int
}

// ContactUpdate carries a partial update; nil fields are left untouched.
type ContactUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *string
}

type ContactRepository interface {
	List(ctx context.Context, userID int64, filter ContactFilter) ([]model.Contact, error)
	FindByID(ctx context.Context, userID, id int64) (*model.Contact, error)
	FindByEmail(ctx context.Context, userID int64, email string) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) (*model.Contact, error)
	Update(ctx context.Context, userID, id int64, update ContactUpdate) (*model.Contact, error)
	Delete(ctx context.Context, userID, id int64) error
}

const contactColumns = `id, first_name, last_name, email, phone, birthday, user_id`

type pgContactRepository struct {
	db *sql.DB
}

func NewPgContactRepository(db *sql.DB) ContactRepository {
	return &pgContactRepository{db: db}
}

func scanContact(row *sql.Row) (*model.Contact, error) {
	c := &model.Contact{}
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Birthday, &c.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *pgContactRepository) List(ctx context.Context, userID int64, filter ContactFilter) ([]model.Contact, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`)
	args := []interface{}{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)`, n, n, n)
	}

	if filter.BirthdaysWithinDays > 0 {
		// Birthdays recur yearly, so compare month-day only. The window is
		// expanded to an explicit day list to handle the year-end wrap.
		placeholders := make([]string, 0, filter.BirthdaysWithinDays+1)
		days := filter.BirthdaysWithinDays
		if days > 366 {
			days = 366
		}
		now := time.Now()
		for i := 0; i <= days; i++ {
			args = append(args, now.AddDate(0, 0, i).Format("01-02"))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		fmt.Fprintf(&sb, ` AND substring(birthday from 6) IN (%s)`, strings.Join(placeholders, ", "))
	}

	sb.WriteString(` ORDER BY id`)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgContactRepository.List: %w", err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Birthday, &c.UserID); err != nil {
			return nil, fmt.Errorf("pgContactRepository.List scan: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContactRepository.List rows: %w", err)
	}
	return contacts, nil
}

func (r *pgContactRepository) FindByID(ctx context.Context, userID, id int64) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 AND id = $2`
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgContactRepository.FindByID: %w", err)
	}
	return contact, nil
}

func (r *pgContactRepository) FindByEmail(ctx context.Context, userID int64, email string) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 AND email = $2`
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, userID, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgContactRepository.FindByEmail: %w", err)
	}
	return contact, nil
}

func (r *pgContactRepository) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	query := `INSERT INTO contacts (first_name, last_name, email, phone, birthday, user_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + contactColumns
	row := r.db.QueryRowContext(ctx, query,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Birthday, contact.UserID,
	)
	created, err := scanContact(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("contact with this email already exists: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("pgContactRepository.Create: %w", err)
	}
	return created, nil
}

func (r *pgContactRepository) Update(ctx context.Context, userID, id int64, update ContactUpdate) (*model.Contact, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.FirstName != nil {
		add("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		add("last_name", *update.LastName)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.Birthday != nil {
		add("birthday", *update.Birthday)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, userID, id)
	}

	args = append(args, userID, id)
	query := fmt.Sprintf(`UPDATE contacts SET %s WHERE user_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), contactColumns)

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgContactRepository.Update: %w", err)
	}
	return contact, nil
}

func (r *pgContactRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("pgContactRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgContactRepository.Delete: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

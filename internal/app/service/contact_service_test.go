package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"contacthub/internal/common"
	"contacthub/internal/domain/model"
	"contacthub/internal/domain/repository"

	"github.com/stretchr/testify/require"
)

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts []*model.Contact
	nextID   int64
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{nextID: 1}
}

func (r *fakeContactRepo) List(_ context.Context, userID int64, filter repository.ContactFilter) ([]model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Contact{}
	for _, c := range r.contacts {
		if c.UserID != userID {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.FirstName), needle) &&
				!strings.Contains(strings.ToLower(c.LastName), needle) &&
				!strings.Contains(strings.ToLower(c.Email), needle) {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeContactRepo) FindByID(_ context.Context, userID, id int64) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.UserID == userID && c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeContactRepo) FindByEmail(_ context.Context, userID int64, email string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.UserID == userID && c.Email == email {
			copied := *c
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeContactRepo) Create(_ context.Context, contact *model.Contact) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *contact
	created.ID = r.nextID
	r.nextID++
	r.contacts = append(r.contacts, &created)
	return &created, nil
}

func (r *fakeContactRepo) Update(_ context.Context, userID, id int64, update repository.ContactUpdate) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.UserID != userID || c.ID != id {
			continue
		}
		if update.FirstName != nil {
			c.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			c.LastName = *update.LastName
		}
		if update.Email != nil {
			c.Email = *update.Email
		}
		if update.Phone != nil {
			c.Phone = *update.Phone
		}
		if update.Birthday != nil {
			c.Birthday = *update.Birthday
		}
		copied := *c
		return &copied, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeContactRepo) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.contacts {
		if c.UserID == userID && c.ID == id {
			r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func validInput() ContactInput {
	return ContactInput{
		FirstName: "James",
		LastName:  "Bond",
		Email:     "bond@mi6.example",
		Phone:     "+44 20 7946 0000",
		Birthday:  "1953-04-13",
	}
}

func TestContactCreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewContactService(newFakeContactRepo())
	owner := &model.User{ID: 1, Username: "agent007"}

	created, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Bond", got.LastName)
}

func TestContactCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewContactService(newFakeContactRepo())
	owner := &model.User{ID: 1}

	_, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, validInput())
	require.ErrorIs(t, err, common.ErrConflict)
	require.EqualError(t, err, "Cannot create contact, email already registered.")
}

func TestContactCreate_InvalidBirthday(t *testing.T) {
	t.Parallel()
	svc := NewContactService(newFakeContactRepo())
	input := validInput()
	input.Birthday = "13/04/1953"

	_, err := svc.Create(context.Background(), &model.User{ID: 1}, input)
	require.ErrorIs(t, err, common.ErrBadRequest)
	require.EqualError(t, err, "Invalid date format. Should be YYYY-MM-DD.")
}

func TestContactAccessIsScopedToOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewContactService(newFakeContactRepo())
	owner := &model.User{ID: 1}
	other := &model.User{ID: 2}

	created, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, other, created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	err = svc.Delete(ctx, other, created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	// Owner still sees it.
	_, err = svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
}

func TestContactUpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewContactService(newFakeContactRepo())
	owner := &model.User{ID: 1}

	created, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	phone := "+44 20 7946 0999"
	updated, err := svc.Update(ctx, owner, created.ID, ContactPatch{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, updated.Phone)
	require.Equal(t, "James", updated.FirstName, "untouched fields survive a patch")

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	_, err = svc.Get(ctx, owner, created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contacthub/internal/common"
	"contacthub/internal/domain/model"
	"contacthub/internal/domain/repository"
)

type ContactService struct {
	contacts repository.ContactRepository
}

func NewContactService(contacts repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

type ContactInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
}

type ContactPatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Birthday  *string `json:"birthday"`
}

func validateBirthday(birthday string) error {
	if _, err := time.Parse("2006-01-02", birthday); err != nil {
		return common.NewError(common.ErrBadRequest, "Invalid date format. Should be YYYY-MM-DD.")
	}
	return nil
}

func (s *ContactService) List(ctx context.Context, user *model.User, filter repository.ContactFilter) ([]model.Contact, error) {
	return s.contacts.List(ctx, user.ID, filter)
}

func (s *ContactService) Get(ctx context.Context, user *model.User, id int64) (*model.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Contact not found")
		}
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, user *model.User, input ContactInput) (*model.Contact, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Phone == "" {
		return nil, common.NewError(common.ErrBadRequest, "first_name, last_name, email and phone are required")
	}
	if err := validateBirthday(input.Birthday); err != nil {
		return nil, err
	}

	if _, err := s.contacts.FindByEmail(ctx, user.ID, input.Email); err == nil {
		return nil, common.NewError(common.ErrConflict, "Cannot create contact, email already registered.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check contact email: %w", err)
	}

	return s.contacts.Create(ctx, &model.Contact{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
		UserID:    user.ID,
	})
}

func (s *ContactService) Update(ctx context.Context, user *model.User, id int64, patch ContactPatch) (*model.Contact, error) {
	if patch.Birthday != nil {
		if err := validateBirthday(*patch.Birthday); err != nil {
			return nil, err
		}
	}

	contact, err := s.contacts.Update(ctx, user.ID, id, repository.ContactUpdate{
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
		Email:     patch.Email,
		Phone:     patch.Phone,
		Birthday:  patch.Birthday,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Contact not found")
		}
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, user *model.User, id int64) error {
	if err := s.contacts.Delete(ctx, user.ID, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, "Contact not found")
		}
		return err
	}
	return nil
}

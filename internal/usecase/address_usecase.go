package usecase

import (
	"context"
	"errors"
	"strings"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

type AddressInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	Country   string
	ZipCode   string
}

type AddressUsecase struct {
	addresses repo.AddressRepository
	ids       IDGenerator
	clock     Clock
}

func NewAddressUsecase(addresses repo.AddressRepository, ids IDGenerator, clock Clock) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, ids: ids, clock: clock}
}

func (u *AddressUsecase) List(ctx context.Context, userID string) ([]model.Address, error) {
	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errInternal("Server error", err)
	}
	if list == nil {
		list = []model.Address{}
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID string, in AddressInput) (model.Address, error) {
	//入力チェック
	if missing := in.missingField(); missing != "" {
		return model.Address{}, errValidation("%s is required", missing)
	}

	now := u.clock.Now()
	a := model.Address{
		ID:        u.ids.NewID(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.applyTo(&a)

	if err := u.addresses.Create(ctx, a); err != nil {
		return model.Address{}, errInternal("Server error", err)
	}
	return a, nil
}

// 部分更新（空のフィールドは今の値のまま）
func (u *AddressUsecase) Update(ctx context.Context, userID string, addressID string, in AddressInput) (model.Address, error) {
	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && a.UserID != userID) {
		return model.Address{}, errNotFound("Address not found")
	}
	if err != nil {
		return model.Address{}, errInternal("Server error", err)
	}

	in.applyTo(&a)
	a.UpdatedAt = u.clock.Now()

	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Address{}, errNotFound("Address not found")
		}
		return model.Address{}, errInternal("Server error", err)
	}
	return a, nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID string, addressID string) error {
	err := u.addresses.Delete(ctx, addressID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound("Address not found")
	}
	if err != nil {
		return errInternal("Server error", err)
	}
	return nil
}

func (in AddressInput) missingField() string {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"phone", in.Phone},
		{"address", in.Address},
		{"city", in.City},
		{"state", in.State},
		{"country", in.Country},
		{"zipCode", in.ZipCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

func (in AddressInput) applyTo(a *model.Address) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&a.FirstName, in.FirstName)
	set(&a.LastName, in.LastName)
	set(&a.Email, in.Email)
	set(&a.Phone, in.Phone)
	set(&a.Address, in.Address)
	set(&a.City, in.City)
	set(&a.State, in.State)
	set(&a.Country, in.Country)
	set(&a.ZipCode, in.ZipCode)
}

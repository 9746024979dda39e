package user

import (
	"context"
	"errors"
	"time"

	"github.com/convenientedu/portal/core"
)

var ErrNotFound = errors.New("user not found")

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	usr.Username = core.CleanString(usr.Username, true /* lower */)
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	usr.CreatedAt = now
	usr.UpdatedAt = now
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// RoleOf resolves a user's role; used to stamp join records.
func (svc *Service) RoleOf(ctx context.Context, id int) (Role, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return usr.Role, nil
}

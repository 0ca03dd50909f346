package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
)

// CustomerService backs the admin customer pages.
type CustomerService interface {
	List(ctx context.Context, search string, page pagination.Params) (*UserList, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Count(ctx context.Context) (int64, error)
}

type customerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByRole(ctx context.Context, role enums.UserRole, search string, page pagination.Params) ([]models.User, int64, error)
	CountByRole(ctx context.Context, role enums.UserRole) (int64, error)
}

type customerService struct {
	repo customerRepository
}

// NewCustomerService builds the admin customer service.
func NewCustomerService(repo customerRepository) (CustomerService, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &customerService{repo: repo}, nil
}

func (s *customerService) List(ctx context.Context, search string, page pagination.Params) (*UserList, error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListByRole(ctx, enums.UserRoleCustomer, search, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	out := &UserList{
		Customers:  make([]UserDTO, 0, len(rows)),
		Pagination: pagination.NewMeta(total, page),
	}
	for i := range rows {
		out.Customers = append(out.Customers, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	if user.Role != enums.UserRoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return FromModel(user), nil
}

func (s *customerService) Count(ctx context.Context) (int64, error) {
	total, err := s.repo.CountByRole(ctx, enums.UserRoleCustomer)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count customers")
	}
	return total, nil
}

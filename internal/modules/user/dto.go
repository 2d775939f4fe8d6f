package user

import "bookreview/internal/domain"

type CreateUserRequest struct {
	Username  string          `json:"username" validate:"required,max=150,username"`
	Email     string          `json:"email" validate:"omitempty,email,max=254"`
	Password  string          `json:"password" validate:"required,max=128"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	Role      domain.UserRole `json:"role" validate:"omitempty,oneof=author reviewer other"`
}

// UpdateUserRequest is the full-replacement (PUT) body.
// Role and IsActive are honoured for admins only.
type UpdateUserRequest struct {
	Username  string           `json:"username" validate:"required,max=150,username"`
	Email     string           `json:"email" validate:"omitempty,email,max=254"`
	Password  string           `json:"password" validate:"omitempty,max=128"`
	FirstName string           `json:"first_name" validate:"max=150"`
	LastName  string           `json:"last_name" validate:"max=150"`
	Role      *domain.UserRole `json:"role" validate:"omitempty,oneof=admin author reviewer other"`
	IsActive  *bool            `json:"is_active"`
}

// PatchUserRequest is the partial (PATCH) body; nil fields are left alone.
type PatchUserRequest struct {
	Username  *string          `json:"username" validate:"omitempty,max=150,username"`
	Email     *string          `json:"email" validate:"omitempty,email,max=254"`
	Password  *string          `json:"password" validate:"omitempty,max=128"`
	FirstName *string          `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string          `json:"last_name" validate:"omitempty,max=150"`
	Role      *domain.UserRole `json:"role" validate:"omitempty,oneof=admin author reviewer other"`
	IsActive  *bool            `json:"is_active"`
}

func (r UpdateUserRequest) patch() PatchUserRequest {
	p := PatchUserRequest{
		Username:  &r.Username,
		Email:     &r.Email,
		FirstName: &r.FirstName,
		LastName:  &r.LastName,
		Role:      r.Role,
		IsActive:  r.IsActive,
	}
	if r.Password != "" {
		p.Password = &r.Password
	}
	return p
}

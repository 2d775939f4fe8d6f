package user

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bookreview/internal/domain"
	"bookreview/internal/filter"
	"bookreview/internal/pkg/pagination"
	"bookreview/internal/repository"
	"bookreview/internal/storage"
)

const msgUsernameTaken = "A user with that username already exists."

type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64, preloads ...string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, q *filter.Query, p pagination.Params, preloads []string) ([]domain.User, int64, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) ([]string, error)
}

// Filters are the list query parameters accepted on /users/.
var Filters = filter.NewSet(
	filter.Field{Param: "username", Column: "username", Lookup: filter.IContains},
	filter.Field{Param: "role", Column: "role"},
	filter.Field{Param: "is_active", Column: "is_active", Kind: filter.Bool},
).
	Search("username", "email", "first_name", "last_name").
	Orderable(map[string]string{"username": "username", "date_joined": "date_joined"}).
	DefaultOrder("date_joined ASC", "id ASC")

type Service struct {
	repo  Repository
	files storage.Storage
	log   *zap.Logger
}

// NewService takes the storage holding book media so that deleting a user
// also removes the files of the books they wrote.
func NewService(repo Repository, files storage.Storage, log *zap.Logger) *Service {
	return &Service{repo: repo, files: files, log: log}
}

// Register creates an account. Admin is never self-assignable.
func (s *Service) Register(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleOther
	}
	if !role.SelfAssignable() {
		return nil, fieldError("role", "Select a valid choice.")
	}

	u := &domain.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		IsActive:  true,
	}
	if err := s.checkUsername(ctx, u.Username); err != nil {
		return nil, err
	}
	if err := s.setPassword(u, req.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("username", msgUsernameTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64, preloads []string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id, preloads...)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, values url.Values, p pagination.Params, preloads []string) ([]domain.User, int64, error) {
	q, errs := Filters.Parse(values)
	if errs != nil {
		return nil, 0, &ValidationError{Fields: errs}
	}
	return s.repo.List(ctx, q, p, preloads)
}

// Update applies req to target. Role and is_active change only when actor is an admin.
func (s *Service) Update(ctx context.Context, actor, target *domain.User, req PatchUserRequest) (*domain.User, error) {
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, fieldError("username", "This field may not be blank.")
		}
		if username != target.Username {
			if err := s.checkUsername(ctx, username); err != nil {
				return nil, err
			}
			target.Username = username
		}
	}
	if req.Email != nil {
		target.Email = *req.Email
	}
	if req.FirstName != nil {
		target.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		target.LastName = *req.LastName
	}
	if actor.IsAdmin() {
		if req.Role != nil {
			target.Role = *req.Role
		}
		if req.IsActive != nil {
			target.IsActive = *req.IsActive
		}
	}
	if req.Password != nil {
		if err := s.setPassword(target, *req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, target); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fieldError("username", msgUsernameTaken)
		}
		return nil, err
	}
	return target, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	media, err := s.repo.Delete(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	for _, u := range media {
		if err := s.files.Delete(ctx, u); err != nil {
			s.log.Warn("failed to delete stored file", zap.String("url", u), zap.Int64("user_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) checkUsername(ctx context.Context, username string) error {
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return fieldError("username", msgUsernameTaken)
	}
	return nil
}

func (s *Service) setPassword(u *domain.User, password string) error {
	if problems := ValidatePassword(password, u.Username, u.Email, u.FirstName, u.LastName); len(problems) > 0 {
		return fieldError("password", strings.Join(problems, " "))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

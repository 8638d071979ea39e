package service

import (
	"errors"
	"regexp"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

// usernameRe matches letters, digits and the . @ + - _ set.
var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// validateUsername rejects malformed names and the reserved literal
// "me", which would collide with the self-profile route.
func validateUsername(username string) error {
	if username == "me" {
		return ErrReservedUsername
	}
	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

type UserService interface {
	GetAll(actor access.Actor, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	GetByUsername(actor access.Actor, username string) (*dto.UserResponse, error)
	Create(actor access.Actor, in dto.CreateUserDTO) (*dto.UserResponse, error)
	UpdateByUsername(actor access.Actor, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error)
	DeleteByUsername(actor access.Actor, username string) error
	Me(actor access.Actor) (*dto.UserResponse, error)
	UpdateMe(actor access.Actor, in dto.UpdateUserDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetAll lists accounts; admin only
func (s *userService) GetAll(actor access.Actor, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	if d := access.Decide(actor, access.OpRead, access.ResourceUserProfile, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	users, total, err := s.userRepo.GetAll(page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.UserFromModel(&users[i]))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *userService) GetByUsername(actor access.Actor, username string) (*dto.UserResponse, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	d := access.Decide(actor, access.OpRead, access.ResourceUserProfile, &access.Object{OwnerID: user.ID})
	if !d.Allowed() {
		return nil, decisionError(d)
	}

	resp := dto.UserFromModel(user)
	return &resp, nil
}

// Create registers an account on behalf of an admin
func (s *userService) Create(actor access.Actor, in dto.CreateUserDTO) (*dto.UserResponse, error) {
	if d := access.Decide(actor, access.OpCreate, access.ResourceUserProfile, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}

	role := access.RoleUser
	if in.Role != "" {
		role = access.Role(in.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
	}

	if _, err := s.userRepo.FindByUsername(in.Username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(in.Email); err == nil {
		return nil, ErrEmailInUse
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	resp := dto.UserFromModel(user)
	return &resp, nil
}

// UpdateByUsername edits an arbitrary account; admin only, so the role
// field is applied when present.
func (s *userService) UpdateByUsername(actor access.Actor, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	d := access.Decide(actor, access.OpUpdate, access.ResourceUserProfile, nil)
	if !d.Allowed() {
		return nil, decisionError(d)
	}

	return s.applyUpdate(user, in, true)
}

// DeleteByUsername removes an account; admin only
func (s *userService) DeleteByUsername(actor access.Actor, username string) error {
	d := access.Decide(actor, access.OpDelete, access.ResourceUserProfile, nil)
	if !d.Allowed() {
		return decisionError(d)
	}

	if err := s.userRepo.DeleteByUsername(username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Me returns the caller's own profile
func (s *userService) Me(actor access.Actor) (*dto.UserResponse, error) {
	if !actor.Authenticated {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	resp := dto.UserFromModel(user)
	return &resp, nil
}

// UpdateMe applies a partial self-edit. The role field is read-only for
// non-admins: a submitted value is dropped without an error while the
// remaining fields are still applied.
func (s *userService) UpdateMe(actor access.Actor, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if !actor.Authenticated {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	d := access.Decide(actor, access.OpUpdate, access.ResourceUserProfile, &access.Object{OwnerID: user.ID})
	if !d.Allowed() {
		return nil, decisionError(d)
	}

	return s.applyUpdate(user, in, actor.IsAdmin())
}

func (s *userService) applyUpdate(user *models.User, in dto.UpdateUserDTO, applyRole bool) (*dto.UserResponse, error) {
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil && applyRole {
		role := access.Role(*in.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) findUser(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

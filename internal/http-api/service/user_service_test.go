package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
)

func adminActor(id string) access.Actor {
	return access.Actor{ID: id, Role: access.RoleAdmin, Authenticated: true}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, validateUsername("kris.kelvin"))
	assert.NoError(t, validateUsername("user@host+x-1_"))
	assert.ErrorIs(t, validateUsername("me"), ErrReservedUsername)
	assert.ErrorIs(t, validateUsername("has space"), ErrInvalidUsername)
	assert.ErrorIs(t, validateUsername("semi;colon"), ErrInvalidUsername)
	assert.ErrorIs(t, validateUsername(""), ErrInvalidUsername)
}

func TestUpdateMe_RoleSilentlyDroppedForNonAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	role := "admin"
	bio := "station psychologist"
	resp, err := svc.UpdateMe(userActor("u1"), dto.UpdateUserDTO{Role: &role, Bio: &bio})

	require.NoError(t, err)
	assert.Equal(t, "user", resp.Role, "role write must be ignored, not rejected")
	assert.Equal(t, "station psychologist", resp.Bio, "other fields still apply")

	stored, err := repo.FindByID("u1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleUser, stored.Role)
	assert.Equal(t, "station psychologist", stored.Bio)
}

func TestUpdateMe_AdminKeepsRoleWrite(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "a1", Username: "boss", Email: "boss@solaris.io", Role: access.RoleAdmin})
	svc := NewUserService(repo)

	role := "moderator"
	resp, err := svc.UpdateMe(adminActor("a1"), dto.UpdateUserDTO{Role: &role})

	require.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
}

func TestUpdateMe_Anonymous(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	bio := "x"
	_, err := svc.UpdateMe(access.Anonymous, dto.UpdateUserDTO{Bio: &bio})

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateByUsername_AdminSetsRole(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	role := "moderator"
	resp, err := svc.UpdateByUsername(adminActor("a1"), "kris", dto.UpdateUserDTO{Role: &role})

	require.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
}

func TestUpdateByUsername_InvalidRole(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	role := "owner"
	_, err := svc.UpdateByUsername(adminActor("a1"), "kris", dto.UpdateUserDTO{Role: &role})

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateByUsername_NonAdminForbidden(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	bio := "x"
	_, err := svc.UpdateByUsername(moderatorActor("m1"), "kris", dto.UpdateUserDTO{Bio: &bio})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateUser_AdminOnly(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	_, err := svc.Create(userActor("u1"), dto.CreateUserDTO{Username: "new", Email: "new@x.io"})
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := svc.Create(adminActor("a1"), dto.CreateUserDTO{Username: "new", Email: "new@x.io", Role: "moderator"})
	require.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
}

func TestCreateUser_Conflicts(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	_, err := svc.Create(adminActor("a1"), dto.CreateUserDTO{Username: "kris", Email: "other@x.io"})
	assert.ErrorIs(t, err, ErrNameInUse)

	_, err = svc.Create(adminActor("a1"), dto.CreateUserDTO{Username: "other", Email: "kris@solaris.io"})
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = svc.Create(adminActor("a1"), dto.CreateUserDTO{Username: "me", Email: "me@x.io"})
	assert.ErrorIs(t, err, ErrReservedUsername)
}

func TestGetByUsername_SelfOrAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	resp, err := svc.GetByUsername(userActor("u1"), "kris")
	require.NoError(t, err)
	assert.Equal(t, "kris", resp.Username)

	_, err = svc.GetByUsername(userActor("u2"), "kris")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetByUsername(adminActor("a1"), "kris")
	assert.NoError(t, err)

	_, err = svc.GetByUsername(access.Anonymous, "kris")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetAllUsers_AdminOnly(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	_, err := svc.GetAll(userActor("u1"), 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)

	page, err := svc.GetAll(adminActor("a1"), 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestDeleteByUsername(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(models.User{ID: "u1", Username: "kris", Email: "kris@solaris.io", Role: access.RoleUser})
	svc := NewUserService(repo)

	assert.ErrorIs(t, svc.DeleteByUsername(userActor("u1"), "kris"), ErrForbidden)

	require.NoError(t, svc.DeleteByUsername(adminActor("a1"), "kris"))
	assert.ErrorIs(t, svc.DeleteByUsername(adminActor("a1"), "kris"), ErrNotFound)
}

package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

type fakeRepo struct {
	users map[string]*User // by email
}

func (f *fakeRepo) CreateUser(ctx context.Context, u *User) error {
	if _, ok := f.users[u.Email]; ok {
		return apperror.Conflict("a user with email %q already exists", u.Email)
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, apperror.NotFound("user with email %q not found", email)
	}
	return u, nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	for _, u := range f.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user %s not found", id)
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]*User, error) {
	var list []*User
	for _, u := range f.users {
		list = append(list, u)
	}
	return list, nil
}

func TestRegisterUserHashesPasswordAndDefaultsRole(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})

	u, err := svc.RegisterUser(context.Background(), RegisterRequest{
		Email:    "new@xenith.example",
		Password: "long enough",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, u.Role)
	assert.NotEqual(t, "long enough", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("long enough")))
}

func TestRegisterUserValidation(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "long enough"}},
		{"short password", RegisterRequest{Email: "a@b.c", Password: "short"}},
		{"bad role", RegisterRequest{Email: "a@b.c", Password: "long enough", Role: "SUPERUSER"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterUser(ctx, tc.req)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		})
	}
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, RegisterRequest{Email: "dup@xenith.example", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, RegisterRequest{Email: "dup@xenith.example", Password: "long enough"})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestSeedAdminCreatesFirstAdmin(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})

	u, err := svc.SeedAdmin(context.Background(), "root@xenith.example", "long enough")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("long enough")))
}

func TestSeedAdminSkipsWhenUsersExist(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, RegisterRequest{Email: "first@xenith.example", Password: "long enough"})
	require.NoError(t, err)

	u, err := svc.SeedAdmin(ctx, "root@xenith.example", "long enough")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSeedAdminValidatesCredentials(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})

	_, err := svc.SeedAdmin(context.Background(), "root@xenith.example", "short")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestRegisterUserKeepsExplicitRole(t *testing.T) {
	svc := NewService(&fakeRepo{users: map[string]*User{}})

	u, err := svc.RegisterUser(context.Background(), RegisterRequest{
		Email:    "mgr@xenith.example",
		Password: "long enough",
		Role:     RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, RoleManager, u.Role)
}

package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/labcore/lis/internal/platform/auth"
)

var testKey = []byte("test-signing-key-with-enough-bytes!!")

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.UserName == u.UserName {
			return ErrDuplicate
		}
	}
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByUserName(_ context.Context, userName string) (*User, error) {
	for _, u := range m.users {
		if u.UserName == userName {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(context.Context) ([]*User, error) {
	out := []*User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockRepo) UpdatePermissions(_ context.Context, id uuid.UUID, perms []string, by Modifier) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Permissions = perms
	u.LastModifiedBy = &by
	return nil
}

func newTestService() *Service {
	svc := NewService(newMockRepo(), auth.NewTokenIssuer(testKey, 12*time.Hour), zerolog.Nop())
	svc.hashCost = bcrypt.MinCost
	return svc
}

func mustRegister(t *testing.T, svc *Service, userName, password, role string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{Name: "Test " + userName, UserName: userName, Password: password, Role: role})
	if err != nil {
		t.Fatalf("register %s: %v", userName, err)
	}
	return u
}

func TestRegister_DefaultPermissions(t *testing.T) {
	svc := newTestService()

	u := mustRegister(t, svc, "sana", "secret", auth.RoleJuniorReceptionist)
	want := []string{"dashboard", "register-patients", "reg-reports", "results", "final-reports"}
	if len(u.Permissions) != len(want) {
		t.Fatalf("expected %v, got %v", want, u.Permissions)
	}
	for i := range want {
		if u.Permissions[i] != want[i] {
			t.Errorf("permission %d: expected %s, got %s", i, want[i], u.Permissions[i])
		}
	}
	if u.PasswordHash == "secret" || u.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}

	admin := mustRegister(t, svc, "root", "secret", auth.RoleAdmin)
	if len(admin.Permissions) != len(Permissions) {
		t.Errorf("expected admin to hold every permission, got %d", len(admin.Permissions))
	}
	admin.Permissions[0] = "changed"
	if Permissions[0] != "dashboard" {
		t.Error("default permission list must not be shared with users")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	mustRegister(t, svc, "sana", "secret", auth.RoleAdmin)

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"missing name", RegisterRequest{UserName: "a", Password: "abc", Role: auth.RoleAdmin}, ErrInvalid},
		{"bad role", RegisterRequest{Name: "A", UserName: "a", Password: "abc", Role: "doctor"}, ErrInvalid},
		{"short password", RegisterRequest{Name: "A", UserName: "a", Password: "ab", Role: auth.RoleAdmin}, ErrInvalid},
		{"duplicate", RegisterRequest{Name: "A", UserName: "sana", Password: "abc", Role: auth.RoleAdmin}, ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLogin_IssuesToken(t *testing.T) {
	svc := newTestService()
	u := mustRegister(t, svc, "bilal", "lab123", auth.RoleSeniorLabTech)

	res, err := svc.Login(context.Background(), LoginRequest{UserName: "bilal", Password: "lab123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.ID != u.ID {
		t.Errorf("expected user in result")
	}

	claims := &auth.Claims{}
	_, err = jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) { return testKey, nil })
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != u.ID.String() || claims.Role != auth.RoleSeniorLabTech || claims.Name != u.Name {
		t.Errorf("unexpected claims %+v", claims)
	}
	if len(claims.Permissions) != 4 {
		t.Errorf("expected permissions in token, got %v", claims.Permissions)
	}
	if d := claims.ExpiresAt.Sub(claims.IssuedAt.Time); d != 12*time.Hour {
		t.Errorf("expected 12h lifetime, got %v", d)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc := newTestService()
	mustRegister(t, svc, "bilal", "lab123", auth.RoleSeniorLabTech)

	if _, err := svc.Login(context.Background(), LoginRequest{UserName: "bilal", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginRequest{UserName: "nobody", Password: "lab123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u := mustRegister(t, svc, "bilal", "old", auth.RoleJuniorLabTech)

	if err := svc.ChangePassword(ctx, u.ID, "bad", "newpass"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "old", "old"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected same password rejected, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "old", "no"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected short password rejected, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "old", "newpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{UserName: "bilal", Password: "newpass"}); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u := mustRegister(t, svc, "bilal", "old", auth.RoleJuniorLabTech)

	if err := svc.ResetPassword(ctx, uuid.New(), "whatever"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.ResetPassword(ctx, u.ID, "fresh"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{UserName: "bilal", Password: "fresh"}); err != nil {
		t.Errorf("expected login with reset password, got %v", err)
	}
}

func TestUpdatePermissions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u := mustRegister(t, svc, "bilal", "old", auth.RoleJuniorLabTech)

	got, err := svc.UpdatePermissions(ctx, u.ID, []string{"results", "inventory", "results"}, Modifier{UserID: "admin-1", Name: "Admin"})
	if err != nil {
		t.Fatalf("update permissions: %v", err)
	}
	if len(got.Permissions) != 2 || got.LastModifiedBy == nil || got.LastModifiedBy.Name != "Admin" {
		t.Errorf("unexpected user %+v", got)
	}

	if _, err := svc.UpdatePermissions(ctx, u.ID, []string{"launch-rockets"}, Modifier{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected unknown permission rejected, got %v", err)
	}
	if _, err := svc.UpdatePermissions(ctx, u.ID, nil, Modifier{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected missing permissions rejected, got %v", err)
	}
	if _, err := svc.UpdatePermissions(ctx, u.ID, []string{}, Modifier{}); err != nil {
		t.Errorf("expected empty set allowed, got %v", err)
	}
}

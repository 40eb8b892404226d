package service

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/templui/securedocs/internal/db/dbtest"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
)

func TestAuthService(t *testing.T) {
	database := dbtest.New(t)
	auth := NewAuthService(repository.NewUserRepository(database), "jwt-secret", false, time.Hour)

	user, err := auth.Register(" Editor@Example.com ", "correct horse battery", model.RoleEditor)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "editor@example.com" {
		t.Errorf("Register() email = %q, want normalized", user.Email)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := auth.Register("editor@example.com", "correct horse battery", model.RoleEditor)
		if !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("Register() error = %v, want ErrEmailAlreadyExists", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		if _, err := auth.Register("not-an-email", "correct horse battery", model.RoleEditor); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Register() bad email error = %v", err)
		}
		if _, err := auth.Register("a@example.com", "short", model.RoleEditor); err == nil {
			t.Error("Register() accepted a weak password")
		}
		if _, err := auth.Register("b@example.com", "correct horse battery", model.Role("root")); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("Register() bad role error = %v", err)
		}
	})

	t.Run("login", func(t *testing.T) {
		got, err := auth.Login("EDITOR@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if got.ID != user.ID || got.Role != model.RoleEditor {
			t.Errorf("Login() = %+v", got)
		}

		_, err = auth.Login("editor@example.com", "wrong password here")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() wrong password error = %v", err)
		}
		_, err = auth.Login("nobody@example.com", "correct horse battery")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() unknown user error = %v", err)
		}
	})

	t.Run("jwt round trip", func(t *testing.T) {
		token, err := auth.GenerateJWT(user)
		if err != nil {
			t.Fatalf("GenerateJWT() error = %v", err)
		}
		claims, err := auth.VerifyJWT(token)
		if err != nil {
			t.Fatalf("VerifyJWT() error = %v", err)
		}
		if claims["user_id"] != user.ID {
			t.Errorf("claims user_id = %v", claims["user_id"])
		}

		other := NewAuthService(nil, "other-secret", false, time.Hour)
		if _, err := other.VerifyJWT(token); err == nil {
			t.Error("VerifyJWT() accepted a token signed with another secret")
		}
	})

	t.Run("cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		auth.SetJWTCookie(rec, "tok", time.Now().Add(time.Hour))
		auth.ClearJWTCookie(rec)
		cookies := rec.Result().Cookies()
		if len(cookies) != 2 || cookies[0].Name != AuthCookieName || !cookies[0].HttpOnly || cookies[1].Value != "" {
			t.Errorf("cookies = %+v", cookies)
		}
	})
}

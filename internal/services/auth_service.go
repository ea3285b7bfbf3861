package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/revocation"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

const incorrectLogin = "Incorrect login."

type UserInput struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	SubjectID string `json:"subjectId"`
}

type AuthService struct {
	users    store.UserStore
	patients store.PatientStore
	physios  store.PhysioStore
	tokens   *utils.TokenService
	revoker  revocation.Revoker
}

// NewAuthService builds the service. A nil revoker disables logout
// revocation: tokens then stay valid until they expire.
func NewAuthService(st *store.Store, tokens *utils.TokenService, revoker revocation.Revoker) *AuthService {
	return &AuthService{
		users:    st.Users,
		patients: st.Patients,
		physios:  st.Physios,
		tokens:   tokens,
		revoker:  revoker,
	}
}

// Login checks the credentials and issues a token. Unknown logins and wrong
// passwords get the same answer.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	logger := zerolog.Ctx(ctx)

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info().Str("login", login).Msg("login failed: unknown user")
			return "", apperr.Unauthenticated(incorrectLogin)
		}
		return "", apperr.Internal("loading user", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		logger.Info().Str("login", login).Msg("login failed: wrong password")
		return "", apperr.Unauthenticated(incorrectLogin)
	}

	var subject string
	if !user.SubjectID.IsZero() {
		subject = user.SubjectID.Hex()
	}
	token, err := s.tokens.Issue(subject, user.Login, user.Role)
	if err != nil {
		return "", apperr.Internal("could not generate token", err)
	}
	logger.Info().Str("login", login).Str("role", user.Role).Msg("login succeeded")
	return token, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if s.revoker == nil {
		zerolog.Ctx(ctx).Warn().Str("login", claims.Login).Msg("token revocation not configured, token stays valid until expiry")
		return nil
	}
	if claims.ExpiresAt == nil {
		return apperr.Unauthenticated("Invalid token.")
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Internal("revoking token", err)
	}
	return nil
}

// Me returns the account behind the token.
func (s *AuthService) Me(ctx context.Context, claims *utils.Claims) (*models.User, error) {
	user, err := s.users.GetByLogin(ctx, claims.Login)
	if err != nil {
		return nil, storeErr(err, "User not found.")
	}
	return user, nil
}

// DeleteUser removes the account with the given login.
func (s *AuthService) DeleteUser(ctx context.Context, login string) (*models.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, storeErr(err, "User not found.")
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, storeErr(err, "User not found.")
	}
	zerolog.Ctx(ctx).Info().Str("login", user.Login).Str("role", user.Role).Msg("user deleted")
	return user, nil
}

// CreateUser provisions an account. Patient and physio accounts must point at
// an existing document of their kind; admin accounts point at nothing.
func (s *AuthService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	user := &models.User{Login: in.Login, Role: in.Role}
	if err := check("user", user); err != nil {
		return nil, err
	}

	switch policy.ParseRole(in.Role) {
	case policy.RoleAdmin:
		if in.SubjectID != "" {
			return nil, apperr.Validation("Admin accounts cannot be linked to a patient or physio.", nil)
		}
	case policy.RolePatient:
		id, err := s.subject(in.SubjectID, "patient", func(id primitive.ObjectID) error {
			_, err := s.patients.Get(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
		user.SubjectID = id
	case policy.RolePhysio:
		id, err := s.subject(in.SubjectID, "physio", func(id primitive.ObjectID) error {
			_, err := s.physios.Get(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
		user.SubjectID = id
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooShort) {
			return nil, apperr.Validation(fmt.Sprintf("Invalid user: password must have at least %d characters.", utils.MinPasswordLength), err)
		}
		return nil, apperr.Internal("hashing password", err)
	}
	user.Password = hash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("A user with that login already exists.", err)
		}
		return nil, apperr.Internal("inserting user", err)
	}
	zerolog.Ctx(ctx).Info().Str("login", user.Login).Str("role", user.Role).Msg("user created")
	return user, nil
}

func (s *AuthService) subject(raw, what string, exists func(primitive.ObjectID) error) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, apperr.Validation(fmt.Sprintf("A %s account needs the id of its %s.", what, what), nil)
	}
	id, err := parseID(raw, what)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := exists(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return primitive.NilObjectID, apperr.Validation(fmt.Sprintf("The %s does not exist.", what), err)
		}
		return primitive.NilObjectID, apperr.Internal("loading "+what, err)
	}
	return id, nil
}

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/shophub/internal/state"
	pkgAuth "github.com/angelmondragon/shophub/pkg/auth"
	pkgcheckout "github.com/angelmondragon/shophub/pkg/checkout"
	"github.com/angelmondragon/shophub/pkg/config"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/security"
)

const invalidCredentialsMessage = "invalid email or password"

// credentialChecker exchanges credentials for an upstream token.
type credentialChecker interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, sessionID string, req LoginRequest) (AuthResponse, error)
	Register(ctx context.Context, sessionID string, req RegisterRequest) (AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (User, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Store       state.Store
	Credentials credentialChecker
	TokenConfig config.AuthConfig
	Now         func() time.Time
	Logger      *logger.Logger
}

type service struct {
	store       state.Store
	credentials credentialChecker
	tokenCfg    config.AuthConfig
	now         func() time.Time
	logg        *logger.Logger
}

// NewService constructs the mock auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "state store is required")
	}
	if params.Credentials == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credential checker is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:       params.Store,
		credentials: params.Credentials,
		tokenCfg:    params.TokenConfig,
		now:         now,
		logg:        params.Logger,
	}, nil
}

// Login checks the credentials upstream. The user record is synthesised from the email.
func (s *service) Login(ctx context.Context, sessionID string, req LoginRequest) (AuthResponse, error) {
	if err := requireSession(sessionID); err != nil {
		return AuthResponse{}, err
	}
	email := strings.TrimSpace(req.Email)
	if !pkgcheckout.ValidEmail(email) {
		return AuthResponse{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"email": "must be a valid email"})
	}
	if req.Password == "" {
		return AuthResponse{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, err := s.credentials.Login(ctx, email, req.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	local, _, _ := strings.Cut(email, "@")
	user := User{
		ID:    s.now().UnixMilli(),
		Email: email,
		Name:  local,
	}
	if err := s.persist(ctx, sessionID, token, user); err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, User: user}, nil
}

// Register validates the form and issues a locally signed token. Nothing is stored upstream.
func (s *service) Register(ctx context.Context, sessionID string, req RegisterRequest) (AuthResponse, error) {
	if err := requireSession(sessionID); err != nil {
		return AuthResponse{}, err
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	details := map[string]string{}
	if !pkgcheckout.ValidPersonName(name) {
		details["name"] = "name must be at least 2 letters and contain only letters and spaces"
	}
	if !pkgcheckout.ValidEmail(email) {
		details["email"] = "must be a valid email"
	}
	if problem := security.PasswordProblem(req.Password); problem != "" {
		details["password"] = problem
	}
	if len(details) > 0 {
		return AuthResponse{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	now := s.now()
	user := User{ID: now.UnixMilli(), Email: email, Name: name}
	token, err := pkgAuth.MintToken(s.tokenCfg, now, pkgAuth.TokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return AuthResponse{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token")
	}
	if err := s.persist(ctx, sessionID, token, user); err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, User: user}, nil
}

// Logout drops the auth record along with the session's cart and wishlist.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID, state.KeyAuthToken, state.KeyUser, state.KeyCart, state.KeyWishlist)
}

func (s *service) Current(ctx context.Context, sessionID string) (User, error) {
	if err := requireSession(sessionID); err != nil {
		return User{}, err
	}
	var token string
	found, err := s.store.Load(ctx, sessionID, state.KeyAuthToken, &token)
	if err != nil {
		return User{}, err
	}
	if !found || token == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")
	}
	var user User
	found, err = s.store.Load(ctx, sessionID, state.KeyUser, &user)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")
	}
	return user, nil
}

func (s *service) persist(ctx context.Context, sessionID, token string, user User) error {
	if err := s.store.Save(ctx, sessionID, state.KeyAuthToken, token); err != nil {
		return err
	}
	if err := s.store.Save(ctx, sessionID, state.KeyUser, user); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "persist signed-in user", err)
		}
		return err
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

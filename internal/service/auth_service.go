package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"critique/internal/featureflags"
	"critique/internal/middleware"
	"critique/internal/models"
	"critique/internal/observability"
	"critique/internal/repository"
	"critique/internal/validation"
)

// AuthService runs registration and token exchange.
//
// Signup records the account and mails a confirmation code. Exchanging the
// username and that code yields a bearer token. Codes are never stored; they
// are regenerated and compared.
type AuthService struct {
	users  repository.UserRepository
	codes  *ConfirmationCodes
	tokens *TokenIssuer
	mailer Mailer
	flags  *featureflags.Manager
}

type SignUpInput struct {
	Username string `json:"username" validate:"required,max=150,notme,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

type TokenInput struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

func NewAuthService(
	users repository.UserRepository,
	codes *ConfirmationCodes,
	tokens *TokenIssuer,
	mailer Mailer,
	flags *featureflags.Manager,
) *AuthService {
	return &AuthService{users: users, codes: codes, tokens: tokens, mailer: mailer, flags: flags}
}

// SignUp registers username and email, or re-sends the code when exactly this
// pair is already registered. Either half colliding with a different account
// is a validation error.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	ctx, span := observability.StartSpan(ctx, "auth", "signup")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = validation.Struct(in); err != nil {
		observability.SignupsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	email := normalizeEmail(in.Email)

	conflicts, err := s.users.FindConflicts(ctx, in.Username, email)
	if err != nil {
		return nil, err
	}

	var user *models.User
	conflict := models.NewValidationError("A user with that username or email already exists")
	for i := range conflicts {
		c := &conflicts[i]
		sameName := c.Username == in.Username
		sameEmail := strings.EqualFold(c.Email, email)
		switch {
		case sameName && sameEmail:
			user = c
		case sameName:
			conflict.WithField("username", "A user with that username already exists")
		case sameEmail:
			conflict.WithField("email", "A user with that email already exists")
		}
	}

	switch {
	case user != nil:
		observability.SignupsTotal.WithLabelValues("resent").Inc()
	case len(conflict.Fields) > 0:
		observability.SignupsTotal.WithLabelValues("rejected").Inc()
		err = conflict
		return nil, err
	case !s.flags.Enabled(featureflags.PublicSignup, email):
		observability.SignupsTotal.WithLabelValues("rejected").Inc()
		err = models.NewValidationError("Registration is closed")
		return nil, err
	default:
		user = &models.User{
			Username:      in.Username,
			Email:         email,
			Role:          models.RoleUser,
			SecurityStamp: newSecurityStamp(),
		}
		// a concurrent signup for the same name or email loses on the unique index
		if err = s.users.Create(ctx, user); err != nil {
			observability.SignupsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		observability.SignupsTotal.WithLabelValues("created").Inc()
	}

	s.sendCode(ctx, user)
	return user, nil
}

// sendCode mails a fresh confirmation code. Delivery failures are logged only.
func (s *AuthService) sendCode(ctx context.Context, user *models.User) {
	code := s.codes.Generate(user)
	body := fmt.Sprintf("Hello %s,\n\nyour confirmation code is: %s\n\nExchange it at POST /api/v1/auth/token.\n",
		user.Username, code)

	if err := s.mailer.Send(ctx, user.Email, "Your confirmation code", body); err != nil {
		observability.ConfirmationEmails.WithLabelValues("failed").Inc()
		middleware.Logger.WarnContext(ctx, "confirmation email not delivered",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.ConfirmationEmails.WithLabelValues("sent").Inc()
}

// Token exchanges a username and confirmation code for a bearer token. The
// code stays usable until it expires or the user's identity fields change.
func (s *AuthService) Token(ctx context.Context, in TokenInput) (string, error) {
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return "", err
	}
	if !s.codes.Verify(user, in.ConfirmationCode) {
		return "", models.NewFieldError("confirmation_code", "Invalid confirmation code")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	observability.TokensIssued.Inc()
	return token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	id, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthenticatedError("User not found")
		}
		return nil, err
	}
	return user, nil
}

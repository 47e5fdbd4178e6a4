package service

import (
	"context"
	"errors"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/avvvet/bizcard-services/internal/comm"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxSecurityRetries bounds compare-and-set retries on the lockout state.
const maxSecurityRetries = 5

var (
	errInvalidCredentials = apperr.New(apperr.KindInvalidCredentials, "Invalid email or password")
	errAccountLocked      = apperr.New(apperr.KindAccountLocked, "Account is temporarily locked due to too many failed login attempts")
)

// UserService struct represents the user service layer
type UserService struct {
	users    UserStore
	cards    CardStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	notifier Notifier
	now      func() time.Time
}

// NewUserService creates a new UserService instance
func NewUserService(users UserStore, cards CardStore, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer) *UserService {
	return &UserService{
		users:    users,
		cards:    cards,
		hasher:   hasher,
		tokens:   tokens,
		notifier: nopNotifier{},
		now:      time.Now,
	}
}

func (s *UserService) WithNotifier(n Notifier) *UserService {
	if n != nil {
		s.notifier = n
	}
	return s
}

func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Register creates an account and returns it with a fresh session token.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (*models.User, string, error) {
	if err := in.Validate(); err != nil {
		return nil, "", apperr.Validation(models.ValidationMessages(err)...)
	}

	email := models.NormalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", apperr.Duplicate("email", nil).WithMessage("User already exists with this email")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindUnexpected, "Registration failed")
	}

	user := &models.User{
		ID: primitive.NewObjectID(),
		Name: models.Name{
			First:  in.Name.First,
			Middle: in.Name.Middle,
			Last:   in.Name.Last,
		},
		Phone:        in.Phone,
		Email:        email,
		PasswordHash: hash,
		Image:        in.Image.Image(models.DefaultUserImageAlt),
		Address:      in.Address.Address(),
		IsBusiness:   in.IsBusiness,
	}

	// a concurrent registration can still win the unique index
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, "", err
	}

	log.Infof("user registered %s", user.ID.Hex())
	s.notifier.Notify(comm.EventUserRegistered, comm.UserEvent{UserId: user.ID.Hex(), Email: user.Email})
	return user, token, nil
}

// Login verifies credentials and drives the lockout state machine. Every
// failed attempt is persisted before Login returns.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (*models.User, string, error) {
	if err := in.Validate(); err != nil {
		return nil, "", apperr.Validation(models.ValidationMessages(err)...)
	}

	email := models.NormalizeEmail(in.Email)
	var matched *bool

	for attempt := 0; attempt < maxSecurityRetries; attempt++ {
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, "", errInvalidCredentials
			}
			return nil, "", err
		}

		now := s.now()
		if user.Security.IsLocked(now) {
			return nil, "", errAccountLocked
		}

		if matched == nil {
			ok, err := s.checkPassword(in.Password, user.PasswordHash)
			if err != nil {
				return nil, "", err
			}
			matched = &ok
		}

		if !*matched {
			next := user.Security.AfterFailure(now)
			swapped, err := s.users.CompareAndSetSecurity(ctx, user.ID, user.Security, next)
			if err != nil {
				return nil, "", err
			}
			if !swapped {
				continue
			}
			if next.IsLocked(now) && !user.Security.IsLocked(now) {
				log.Warnf("user %s locked until %s after %d failed logins", user.ID.Hex(), next.LockedUntil.Format(time.RFC3339), next.FailedAttempts)
				s.notifier.Notify(comm.EventUserLocked, comm.UserEvent{UserId: user.ID.Hex(), Email: user.Email})
			}
			return nil, "", errInvalidCredentials
		}

		if user.Security.NeedsReset() {
			swapped, err := s.users.CompareAndSetSecurity(ctx, user.ID, user.Security, models.Security{})
			if err != nil {
				return nil, "", err
			}
			if !swapped {
				continue
			}
			user.Security = models.Security{}
		}

		token, err := s.tokens.Issue(identityOf(user))
		if err != nil {
			return nil, "", err
		}
		return user, token, nil
	}

	return nil, "", apperr.New(apperr.KindUnexpected, "Login failed, please retry")
}

func (s *UserService) checkPassword(password, hash string) (bool, error) {
	err := s.hasher.Compare(password, hash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, auth.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperr.Wrap(err, apperr.KindUnexpected, "Login failed")
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, oid)
}

// UpdateUser applies the allow-listed profile changes in upd.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	oid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	if err := upd.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessages(err)...)
	}

	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := models.NormalizeEmail(*upd.Email)
		upd.Email = &email
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, apperr.Duplicate("email", nil).WithMessage("Email already exists")
			} else if !apperr.Is(err, apperr.KindNotFound) {
				return nil, err
			}
		}
	}

	return s.users.UpdateUser(ctx, oid, upd)
}

func (s *UserService) ChangeBusinessStatus(ctx context.Context, id string, in models.BusinessStatusInput) (*models.User, error) {
	oid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessages(err)...)
	}
	return s.users.SetBusiness(ctx, oid, *in.IsBusiness)
}

// DeleteUser removes every card the user owns, then the user.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	oid, err := parseUserID(id)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return err
	}

	removed, err := s.cards.DeleteByOwner(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, oid); err != nil {
		return err
	}

	log.Infof("user %s deleted with %d cards", oid.Hex(), removed)
	s.notifier.Notify(comm.EventUserDeleted, comm.UserEvent{UserId: oid.Hex(), Email: user.Email, CardsDeleted: removed})
	return nil
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{ID: u.ID.Hex(), IsBusiness: u.IsBusiness, IsAdmin: u.IsAdmin}
}

func parseUserID(id string) (primitive.ObjectID, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("User not found")
	}
	return oid, nil
}

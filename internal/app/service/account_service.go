package service

import (
	"campus_auth/internal/common"
	"campus_auth/internal/common/security"
	"campus_auth/internal/domain/model"
	"campus_auth/internal/domain/policy"
	"campus_auth/internal/domain/repository"
	"campus_auth/internal/platform/cache"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	DefaultStoreTimeout = 5 * time.Second
	DefaultHashTimeout  = 5 * time.Second
)

// TokenSigner issues bearer tokens for authenticated accounts.
type TokenSigner interface {
	Issue(email, role string) (string, error)
}

// Locker serialises registrations of the same email. A held lock is reported
// with cache.ErrLockHeld.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Timeouts bound every storage and hashing call made by the service.
type Timeouts struct {
	Store time.Duration
	Hash  time.Duration
}

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	UserName         string `json:"userName"`
	IsRepresentative *bool  `json:"isRepresentative,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type AccountService struct {
	repo     repository.AccountRepository
	hasher   security.PasswordHasher
	tokens   TokenSigner
	emails   *policy.EmailPolicy
	locker   Locker
	logger   *slog.Logger
	timeouts Timeouts
	newID    func() string
}

// NewAccountService wires the service. A nil locker disables the registration
// lock; zero timeouts fall back to the defaults.
func NewAccountService(
	repo repository.AccountRepository,
	hasher security.PasswordHasher,
	tokens TokenSigner,
	emails *policy.EmailPolicy,
	locker Locker,
	logger *slog.Logger,
	timeouts Timeouts,
) *AccountService {
	if locker == nil {
		locker = nopLocker{}
	}
	if timeouts.Store <= 0 {
		timeouts.Store = DefaultStoreTimeout
	}
	if timeouts.Hash <= 0 {
		timeouts.Hash = DefaultHashTimeout
	}
	return &AccountService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		emails:   emails,
		locker:   locker,
		logger:   logger,
		timeouts: timeouts,
		newID:    uuid.NewString,
	}
}

// Register creates a new account in v's collection.
func (s *AccountService) Register(ctx context.Context, v Variant, req RegisterRequest) (*common.Result, error) {
	if err := requireFields("email", req.Email, "password", req.Password, "userName", req.UserName); err != nil {
		return nil, err
	}
	if err := s.emails.Validate(req.Email); err != nil {
		return nil, s.invalidDomain(req.Email)
	}

	account := &model.Account{
		ID:       s.newID(),
		Variant:  v.Kind,
		Email:    req.Email,
		UserName: req.UserName,
		Handle:   slug.Make(req.UserName),
	}
	if v.prepare != nil {
		if err := v.prepare(s.emails, req, account); err != nil {
			return nil, err
		}
	}

	release, err := s.locker.Acquire(ctx, string(v.Kind)+":"+req.Email)
	switch {
	case errors.Is(err, cache.ErrLockHeld):
		return nil, common.Reject(common.ErrRegistrationInProgress,
			"Registration for this email is already in progress", "variant", v.Kind, "email", req.Email)
	case err != nil:
		// The unique constraint still guards the insert.
		s.logger.Warn("registration lock unavailable", "variant", v.Kind, "email", req.Email, "error", err)
	default:
		defer release()
	}

	if _, err := s.find(ctx, v.Kind, req.Email); err == nil {
		return nil, common.Reject(common.ErrDuplicateEmail, v.Messages.Duplicate, "variant", v.Kind, "email", req.Email)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.Internal("register.find", err, v.Messages.RegisterFailed, "variant", v.Kind)
	}

	if err := passwordRule(req.Password, "Password"); err != nil {
		return nil, err
	}

	hash, err := s.hash(ctx, req.Password)
	if err != nil {
		return nil, common.Internal("register.hash", err, v.Messages.RegisterFailed, "variant", v.Kind)
	}
	account.PasswordHash = hash

	if _, err := s.insert(ctx, account); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.Reject(common.ErrDuplicateEmail, v.Messages.Duplicate, "variant", v.Kind, "email", req.Email)
		}
		return nil, common.Internal("register.insert", err, v.Messages.RegisterFailed, "variant", v.Kind)
	}

	s.logger.Info("account registered", "variant", v.Kind, "email", account.Email, "id", account.ID)
	return &common.Result{IsSuccess: true, Message: v.Messages.Registered}, nil
}

// Login checks the credentials against v's collection and issues a token.
func (s *AccountService) Login(ctx context.Context, v Variant, req LoginRequest) (*common.Result, error) {
	account, err := s.authenticate(ctx, v.Kind, req, v.Messages.UnknownEmail)
	if err != nil {
		return nil, err
	}
	return s.issue(account, v.Role, v.Messages.LoggedIn)
}

// RepresentativeLogin authenticates a student and additionally requires the
// representative flag. The password is verified before the flag.
func (s *AccountService) RepresentativeLogin(ctx context.Context, req LoginRequest) (*common.Result, error) {
	account, err := s.authenticate(ctx, model.VariantStudent, req, "Invalid student representative email")
	if err != nil {
		return nil, err
	}
	if !account.IsRepresentative {
		return nil, common.Reject(common.ErrNotRepresentative,
			"Student email is not registered as representative email", "email", account.Email)
	}
	return s.issue(account, model.RoleRepresentative, "Representative login successful")
}

// ChangePassword replaces the stored hash once the current password checks out.
func (s *AccountService) ChangePassword(ctx context.Context, v Variant, req ChangePasswordRequest) (*common.Result, error) {
	if err := requireFields("email", req.Email, "oldPassword", req.OldPassword, "newPassword", req.NewPassword); err != nil {
		return nil, err
	}

	account, err := s.find(ctx, v.Kind, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Reject(common.ErrInvalidAccount, v.Messages.UnknownAccount, "variant", v.Kind, "email", req.Email)
		}
		return nil, common.Internal("change_password.find", err, "Failed to update password", "variant", v.Kind)
	}

	ok, err := s.verify(ctx, req.OldPassword, account.PasswordHash)
	if err != nil {
		return nil, common.Internal("change_password.verify", err, "Failed to update password", "variant", v.Kind)
	}
	if !ok {
		return nil, common.Reject(common.ErrInvalidCurrentPassword, "Invalid current password", "variant", v.Kind, "email", req.Email)
	}

	same, err := s.verify(ctx, req.NewPassword, account.PasswordHash)
	if err != nil {
		return nil, common.Internal("change_password.verify", err, "Failed to update password", "variant", v.Kind)
	}
	if same {
		return nil, common.Reject(common.ErrSamePassword,
			"New password must be different from the current password", "variant", v.Kind, "email", req.Email)
	}

	if err := passwordRule(req.NewPassword, "New password"); err != nil {
		return nil, err
	}

	hash, err := s.hash(ctx, req.NewPassword)
	if err != nil {
		return nil, common.Internal("change_password.hash", err, "Failed to update password", "variant", v.Kind)
	}
	if err := s.update(ctx, v.Kind, req.Email, model.AccountPatch{PasswordHash: &hash}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Reject(common.ErrInvalidAccount, v.Messages.UnknownAccount, "variant", v.Kind, "email", req.Email)
		}
		return nil, common.Internal("change_password.update", err, "Failed to update password", "variant", v.Kind)
	}

	s.logger.Info("password updated", "variant", v.Kind, "email", req.Email)
	return &common.Result{IsSuccess: true, Message: "Password updated"}, nil
}

// List returns every account of the variant ordered by creation time.
func (s *AccountService) List(ctx context.Context, v Variant) ([]*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Store)
	defer cancel()

	accounts, err := s.repo.List(ctx, v.Kind)
	if err != nil {
		return nil, common.Internal("list", err, "Failed to list accounts", "variant", v.Kind)
	}
	return accounts, nil
}

func (s *AccountService) authenticate(ctx context.Context, kind model.Variant, req LoginRequest, unknownEmail string) (*model.Account, error) {
	if err := requireFields("email", req.Email, "password", req.Password); err != nil {
		return nil, err
	}

	account, err := s.find(ctx, kind, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("login rejected", "variant", kind, "email", req.Email, "reason", "unknown email")
			return nil, common.Reject(common.ErrInvalidCredentials, unknownEmail, "variant", kind, "email", req.Email)
		}
		return nil, common.Internal("login.find", err, "Failed to login", "variant", kind)
	}

	ok, err := s.verify(ctx, req.Password, account.PasswordHash)
	if err != nil {
		return nil, common.Internal("login.verify", err, "Failed to login", "variant", kind)
	}
	if !ok {
		s.logger.Info("login rejected", "variant", kind, "email", req.Email, "reason", "wrong password")
		return nil, common.Reject(common.ErrInvalidPassword, "Invalid password", "variant", kind, "email", req.Email)
	}
	return account, nil
}

func (s *AccountService) issue(account *model.Account, role, message string) (*common.Result, error) {
	token, err := s.tokens.Issue(account.Email, role)
	if err != nil {
		return nil, common.Internal("login.token", err, "Failed to login", "role", role)
	}
	s.logger.Info("login succeeded", "variant", account.Variant, "email", account.Email, "role", role)
	return &common.Result{IsSuccess: true, Message: message, JWTToken: token}, nil
}

func (s *AccountService) invalidDomain(email string) error {
	return common.Reject(common.ErrInvalidDomain,
		"Invalid email domain. Only '"+s.emails.Domain()+"' emails are allowed.", "email", email)
}

func (s *AccountService) find(ctx context.Context, kind model.Variant, email string) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Store)
	defer cancel()
	return s.repo.FindByEmail(ctx, kind, email)
}

func (s *AccountService) insert(ctx context.Context, account *model.Account) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Store)
	defer cancel()
	return s.repo.Insert(ctx, account)
}

func (s *AccountService) update(ctx context.Context, kind model.Variant, email string, patch model.AccountPatch) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Store)
	defer cancel()
	return s.repo.Update(ctx, kind, email, patch)
}

func (s *AccountService) hash(ctx context.Context, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Hash)
	defer cancel()
	return s.hasher.Hash(ctx, password)
}

func (s *AccountService) verify(ctx context.Context, password, hash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Hash)
	defer cancel()
	return s.hasher.Verify(ctx, password, hash)
}

// requireFields takes name/value pairs and rejects when any value is empty.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return common.Reject(common.ErrMissingFields,
		"Missing required fields: "+strings.Join(missing, ", "), "fields", missing)
}

// passwordRule applies the shared length policy. label prefixes the message.
func passwordRule(password, label string) error {
	switch err := policy.CheckPassword(password); {
	case errors.Is(err, policy.ErrPasswordTooShort):
		return common.Reject(common.ErrWeakPassword, label+" is too short")
	case errors.Is(err, policy.ErrPasswordTooLong):
		return common.Reject(common.ErrWeakPassword, label+" is too long")
	}
	return nil
}

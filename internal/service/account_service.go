package service

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mealplanner/internal/domain"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type RegisterRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Confirm     string `json:"confirm_password"`
	Preferences string `json:"preferences"`
	Allergens   string `json:"allergens"`
}

type AccountService struct {
	repository AccountRepository
}

func NewAccountService(repository AccountRepository) *AccountService {
	return &AccountService{repository: repository}
}

func (s *AccountService) Register(req RegisterRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if !emailRE.MatchString(req.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if digitCount(req.Phone) < 7 {
		return nil, fmt.Errorf("%w: phone number must contain at least 7 digits", ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if req.Password != req.Confirm {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Preferences:  req.Preferences,
		Allergens:    req.Allergens,
	}
	if err := s.repository.CreateUser(user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: email is already registered", ErrValidation)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate returns ErrNotFound for both an unknown email and a wrong
// password, so callers cannot probe which emails exist.
func (s *AccountService) Authenticate(email, password string) (*domain.User, error) {
	user, err := s.repository.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *AccountService) Profile(userID int) (*domain.User, error) {
	user, err := s.repository.GetUser(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(userID int, phone, preferences, allergens string) (*domain.User, error) {
	if digitCount(phone) < 7 {
		return nil, fmt.Errorf("%w: phone number must contain at least 7 digits", ErrValidation)
	}
	if err := s.repository.UpdateUserContact(userID, phone, preferences, allergens); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Profile(userID)
}

func (s *AccountService) ChangePassword(userID int, current, next, confirm string) error {
	if len(next) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if next != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if next == current {
		return fmt.Errorf("%w: new password must differ from the current one", ErrValidation)
	}

	user, err := s.Profile(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repository.UpdateUserPassword(userID, string(hash))
}

// TopUpWallet credits the wallet and returns the refreshed profile. Payment
// capture is out of scope; the amount is taken at face value.
func (s *AccountService) TopUpWallet(userID int, amountCents int64) (*domain.User, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: top-up amount must be positive", ErrValidation)
	}
	if err := s.repository.CreditWallet(userID, amountCents); err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	return s.Profile(userID)
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

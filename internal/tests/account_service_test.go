package tests

import (
	"testing"

	"mealplanner/internal/domain"
	"mealplanner/internal/mocks"
	"mealplanner/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestAccountService_Register(t *testing.T) {
	valid := service.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "Ada@Example.com", Phone: "555-123-4567",
		Password: "secret1", Confirm: "secret1",
	}

	tests := []struct {
		name         string
		mutate       func(r *service.RegisterRequest)
		prepareMocks func(repository *mocks.AccountRepository)
		wantErr      error
	}{
		{
			name: "success",
			prepareMocks: func(repository *mocks.AccountRepository) {
				repository.On("CreateUser", mock.MatchedBy(func(u *domain.User) bool {
					return u.Email == "ada@example.com" && u.PasswordHash != "secret1"
				})).Return(nil).Once()
			},
		},
		{
			name:    "invalid_email",
			mutate:  func(r *service.RegisterRequest) { r.Email = "not-an-email" },
			wantErr: service.ErrValidation,
		},
		{
			name:    "phone_too_short",
			mutate:  func(r *service.RegisterRequest) { r.Phone = "12345" },
			wantErr: service.ErrValidation,
		},
		{
			name: "password_too_short",
			mutate: func(r *service.RegisterRequest) {
				r.Password = "abc"
				r.Confirm = "abc"
			},
			wantErr: service.ErrValidation,
		},
		{
			name:    "password_mismatch",
			mutate:  func(r *service.RegisterRequest) { r.Confirm = "different" },
			wantErr: service.ErrValidation,
		},
		{
			name:    "missing_name",
			mutate:  func(r *service.RegisterRequest) { r.FirstName = "" },
			wantErr: service.ErrValidation,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repository := mocks.NewAccountRepository(t)
			if testCase.prepareMocks != nil {
				testCase.prepareMocks(repository)
			}
			svc := service.NewAccountService(repository)

			req := valid
			if testCase.mutate != nil {
				testCase.mutate(&req)
			}

			user, err := svc.Register(req)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "ada@example.com", user.Email)
		})
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)

	repository := mocks.NewAccountRepository(t)
	repository.On("GetUserByEmail", "ada@example.com").
		Return(&domain.User{ID: 7, Email: "ada@example.com", PasswordHash: string(hash)}, nil)

	svc := service.NewAccountService(repository)

	user, err := svc.Authenticate("ada@example.com", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, 7, user.ID)

	_, err = svc.Authenticate("ada@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAccountService_ChangePassword_WrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)

	repository := mocks.NewAccountRepository(t)
	repository.On("GetUser", 7).
		Return(&domain.User{ID: 7, PasswordHash: string(hash)}, nil).Once()

	svc := service.NewAccountService(repository)

	err := svc.ChangePassword(7, "wrong", "newpass1", "newpass1")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAccountService_ChangePassword_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)

	repository := mocks.NewAccountRepository(t)
	repository.On("GetUser", 7).
		Return(&domain.User{ID: 7, PasswordHash: string(hash)}, nil).Once()
	repository.On("UpdateUserPassword", 7, mock.MatchedBy(func(h string) bool {
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("newpass1")) == nil
	})).Return(nil).Once()

	svc := service.NewAccountService(repository)

	assert.NoError(t, svc.ChangePassword(7, "secret1", "newpass1", "newpass1"))
}

func TestAccountService_TopUpWallet(t *testing.T) {
	repository := mocks.NewAccountRepository(t)
	repository.On("CreditWallet", 7, int64(5000)).Return(nil).Once()
	repository.On("GetUser", 7).
		Return(&domain.User{ID: 7, WalletCents: 5000}, nil).Once()

	svc := service.NewAccountService(repository)

	user, err := svc.TopUpWallet(7, 5000)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), user.WalletCents)

	_, err = svc.TopUpWallet(7, -100)
	assert.ErrorIs(t, err, service.ErrValidation)
}

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ezshare/ezshare/pkg/models"
)

// AccountStore is the keyed credential lookup the authentication authority
// depends on. Accounts are keyed by their client-derived identity token.
type AccountStore interface {
	// GetAccount returns the account for an identity token, or
	// models.ErrAccountNotFound.
	GetAccount(ctx context.Context, identityToken string) (*models.Account, error)

	// CreateAccount inserts a new account, assigning an ID if unset.
	// Returns models.ErrDuplicateAccount if the identity token is taken.
	CreateAccount(ctx context.Context, account *models.Account) (string, error)

	// UpdateCredentials atomically replaces the identity token and password
	// hash of the account currently known by identityToken. The stored salt
	// is left untouched.
	UpdateCredentials(ctx context.Context, identityToken, newToken, newHash string) error

	// UpdateLastLogin stamps the last successful login time.
	UpdateLastLogin(ctx context.Context, identityToken string, timestamp time.Time) error

	// CountAccounts returns the number of accounts in the store.
	CountAccounts(ctx context.Context) (int64, error)
}

func (s *GORMStore) GetAccount(ctx context.Context, identityToken string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("identity_token = ?", identityToken).First(&account).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrAccountNotFound)
	}
	return &account, nil
}

func (s *GORMStore) CreateAccount(ctx context.Context, account *models.Account) (string, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", models.ErrDuplicateAccount
		}
		return "", err
	}
	return account.ID, nil
}

func (s *GORMStore) UpdateCredentials(ctx context.Context, identityToken, newToken, newHash string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).
			Where("identity_token = ?", identityToken).
			Updates(map[string]any{
				"identity_token": newToken,
				"password_hash":  newHash,
			})
		if result.Error != nil {
			if isUniqueConstraintError(result.Error) {
				return models.ErrDuplicateAccount
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrAccountNotFound
		}
		return nil
	})
}

func (s *GORMStore) UpdateLastLogin(ctx context.Context, identityToken string, timestamp time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("identity_token = ?", identityToken).
		Update("last_login", timestamp)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (s *GORMStore) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).Count(&count).Error
	return count, err
}

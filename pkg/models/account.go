// Package models defines the persisted domain types for ezshare.
package models

import "time"

// Account is a credential record for one user of the share.
//
// The server never sees a plaintext username or password: IdentityToken and
// the client-side half of the password hash are derived by the client with a
// memory-hard KDF before transmission. PasswordHash stores the server-side
// re-hash of the client value through Salt, so a database leak exposes
// neither the client hash nor anything reversible to a password.
type Account struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	IdentityToken string `gorm:"uniqueIndex;not null;size:512" json:"-"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Salt          string `gorm:"not null;size:64" json:"-"`
	Email         string `gorm:"size:255" json:"email,omitempty"`

	// Permission flags. Browsing and downloading require only a login;
	// everything else is gated on one of these.
	ClipboardAllowed bool `gorm:"default:false" json:"clipboard_allowed"`
	UploadAllowed    bool `gorm:"default:false" json:"upload_allowed"`
	RegisterAllowed  bool `gorm:"default:false" json:"register_allowed"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// TableName returns the table name for Account.
func (Account) TableName() string {
	return "accounts"
}

// Permissions holds the three per-account permission flags.
//
// The JSON field names match the wire format the frontend consumes.
type Permissions struct {
	Clipboard bool `json:"ClipboardAllowed"`
	Upload    bool `json:"UploadAllowed"`
	Register  bool `json:"RegisterAllowed"`
}

// Permissions returns the account's permission flags as a snapshot value.
func (a *Account) Permissions() Permissions {
	return Permissions{
		Clipboard: a.ClipboardAllowed,
		Upload:    a.UploadAllowed,
		Register:  a.RegisterAllowed,
	}
}

// AllModels returns all model types for schema migration.
func AllModels() []any {
	return []any{
		&Account{},
	}
}

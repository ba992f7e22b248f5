package domain

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User representa una identidad registrada. El hash nunca se serializa.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLocal indica si la identidad se autentica con password propio.
func (u User) IsLocal() bool {
	return u.Provider == ProviderLocal
}

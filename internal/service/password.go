package service

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignora lo que pase de 72 bytes; se rechaza antes de hashear.
const maxPasswordBytes = 72

// PasswordHasher hashea y verifica passwords con bcrypt.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare usa la comparacion en tiempo constante de bcrypt.
func (h *PasswordHasher) Compare(hash, password string) bool {
	if hash == "" {
		h.burn(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// burn gasta el mismo tiempo que una verificacion real para que la
// latencia no revele si la cuenta existe.
func (h *PasswordHasher) burn(password string) {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}

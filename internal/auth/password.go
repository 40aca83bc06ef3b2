package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash for account credentials. The
// cost comes from configuration; anything below bcrypt's minimum falls back
// to the library default so a misconfigured deployment never stores weak
// hashes.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a login attempt against the stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

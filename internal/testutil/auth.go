package testutil

import "golang.org/x/crypto/bcrypt"

// APIToken is the operator token accepted by test apps
const APIToken = "test-api-token"

// TokenHash hashes APIToken at the lowest bcrypt cost to keep tests fast
func TokenHash() (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(APIToken), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

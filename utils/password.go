package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// IsPasswordHashed nhận diện chuỗi đã được bcrypt để không băm lại lần nữa.
func IsPasswordHashed(value string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(value, p) && len(value) == 60 {
			return true
		}
	}
	return false
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

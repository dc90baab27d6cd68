package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

// ErrPasswordPolicy 表示密码不满足长度要求。
var ErrPasswordPolicy = errors.New("password does not satisfy the policy")

// HashPassword 对明文密码进行哈希处理
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 验证密码是否与存储的哈希值匹配
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}

// ValidatePassword 在哈希之前执行长度策略检查。
func ValidatePassword(password string, minLen, maxLen int) error {
	if minLen <= 0 {
		minLen = 8
	}
	if maxLen < minLen {
		maxLen = 128
	}
	if len(password) < minLen {
		return fmt.Errorf("%w: at least %d characters required", ErrPasswordPolicy, minLen)
	}
	if len(password) > maxLen {
		return fmt.Errorf("%w: at most %d characters allowed", ErrPasswordPolicy, maxLen)
	}
	return nil
}

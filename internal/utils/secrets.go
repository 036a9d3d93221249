package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSecretNotFound возвращается, если файла секрета нет.
var ErrSecretNotFound = errors.New("secret not found")

// ReadSecretFrom читает секрет из каталога dir. Пустой файл считается ошибкой.
func ReadSecretFrom(dir, secretName string) (string, error) {
	filePath := filepath.Join(dir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, filePath)
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadOptionalSecret возвращает пустую строку, если секрет не смонтирован.
func ReadOptionalSecret(dir, secretName string) (string, error) {
	secret, err := ReadSecretFrom(dir, secretName)
	if errors.Is(err, ErrSecretNotFound) {
		return "", nil
	}
	return secret, err
}

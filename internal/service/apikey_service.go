package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/talmo/prompt-canvas/internal/domain"
	"github.com/talmo/prompt-canvas/internal/repository"
)

// APIKeyService stores provider keys encrypted at rest with AES-GCM. The
// encryption key is derived from a configured passphrase.
type APIKeyService struct {
	repo *repository.APIKeyRepository
	key  []byte
}

func NewAPIKeyService(repo *repository.APIKeyRepository, encryptionKey string) *APIKeyService {
	hashed := sha256.Sum256([]byte(encryptionKey))
	return &APIKeyService{
		repo: repo,
		key:  hashed[:],
	}
}

func (s *APIKeyService) List(ctx context.Context) ([]domain.APIKey, error) {
	return s.repo.List(ctx)
}

func (s *APIKeyService) Upsert(ctx context.Context, provider, plaintext string) (domain.APIKey, error) {
	encrypted, err := s.encrypt(plaintext)
	if err != nil {
		return domain.APIKey{}, err
	}
	return s.repo.Upsert(ctx, strings.ToLower(provider), encrypted)
}

func (s *APIKeyService) Delete(ctx context.Context, provider string) error {
	return s.repo.Delete(ctx, strings.ToLower(provider))
}

// Decrypted returns the plaintext key for a provider, or ErrMissingAPIKey
// when none is stored.
func (s *APIKeyService) Decrypted(ctx context.Context, provider string) (string, error) {
	record, err := s.repo.GetByProvider(ctx, strings.ToLower(provider))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMissingAPIKey
	}
	if err != nil {
		return "", err
	}
	return s.decrypt(record.EncryptedKey)
}

func (s *APIKeyService) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *APIKeyService) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

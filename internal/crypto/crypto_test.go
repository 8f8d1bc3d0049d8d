package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 64 hex chars = 32 bytes, a valid AES-256 key.
const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewAESGCMService(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestNewAESGCMService_BadKeys(t *testing.T) {
	tests := []struct {
		name   string
		hexKey string
	}{
		{"not hex", "zzzz"},
		{"31 bytes", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"},
		{"33 bytes", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef00"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewAESGCMService(tt.hexKey)
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	token := "oauth:j5qmk8rwp3xyzabc"

	stored, err := svc.Encrypt(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, stored)
	assert.Greater(t, len(stored), len(token))

	loaded, err := svc.Decrypt(stored)
	require.NoError(t, err)
	assert.Equal(t, token, loaded)
}

func TestEncrypt_UniqueNonces(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	// Same token twice must not produce the same stored value.
	first, err := svc.Encrypt("oauth:sametoken")
	require.NoError(t, err)
	second, err := svc.Encrypt("oauth:sametoken")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_RejectsGarbage(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "not-valid-hex!!!"},
		{"shorter than nonce", "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decrypt(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	stored, err := svc.Encrypt("oauth:secrettoken")
	require.NoError(t, err)

	// Flip one bit inside the GCM tag.
	raw, err := hex.DecodeString(stored)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	_, err = svc.Decrypt(hex.EncodeToString(raw))
	assert.Error(t, err)
}

func TestNoopService_Passthrough(t *testing.T) {
	svc := NoopService{}

	stored, err := svc.Encrypt("oauth:devtoken")
	require.NoError(t, err)
	assert.Equal(t, "oauth:devtoken", stored)

	loaded, err := svc.Decrypt("oauth:devtoken")
	require.NoError(t, err)
	assert.Equal(t, "oauth:devtoken", loaded)
}

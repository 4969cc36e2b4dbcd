package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// lightweight per-user API key store (file, 0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but avoids plain-text config.

const fileName = "apikey.json"

type keyFile struct {
	Key string `json:"key"` // base64(ciphertext)
}

// StoreAPIKey encrypts and persists the Gemini API key for the current user.
func StoreAPIKey(key string) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	ct, err := encrypt([]byte(key))
	if err != nil {
		return err
	}
	return save(path, keyFile{Key: base64.StdEncoding.EncodeToString(ct)})
}

// FetchAPIKey returns the stored key, or an error if none is stored.
func FetchAPIKey() (string, error) {
	path, err := filePath()
	if err != nil {
		return "", err
	}
	kf, err := load(path)
	if err != nil {
		return "", err
	}
	if kf.Key == "" {
		return "", fmt.Errorf("key not found")
	}
	raw, err := base64.StdEncoding.DecodeString(kf.Key)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// DeleteAPIKey removes the stored key if present.
func DeleteAPIKey() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func filePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "gemq")
	if err := os.MkdirAll(dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (keyFile, error) {
	var kf keyFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return keyFile{}, nil
		}
		return kf, err
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, err
	}
	return kf, nil
}

func save(path string, kf keyFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func masterKey() []byte {
	user := os.Getenv("USER")
	base := fmt.Sprintf("gemq-%s-%s", runtime.GOOS, user)
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

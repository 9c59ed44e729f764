// Package credentials reads and writes the encrypted credential file
// that must sit next to the chosen input table. The password is sealed
// with AES-256-GCM under a key derived from an operator-supplied
// passphrase; the username travels in the clear.
package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16
	keyLength  = 32
	kdfRounds  = 4096
)

// Credential is a decrypted username/password pair for the vCenter session.
type Credential struct {
	Username string
	Password string
}

type credentialFile struct {
	XMLName  xml.Name `xml:"credential"`
	Username string   `xml:"username"`
	Password string   `xml:"password"`
	Salt     string   `xml:"salt"`
}

// Load reads the credential file at path and decrypts the password with
// the given passphrase.
func Load(path, passphrase string) (Credential, error) {
	if passphrase == "" {
		return Credential{}, errors.New("credential passphrase is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, errors.Wrapf(err, "failed to read credential file %s", path)
	}

	var file credentialFile
	if err := xml.Unmarshal(raw, &file); err != nil {
		return Credential{}, errors.Wrap(err, "failed to parse credential file")
	}
	if file.Username == "" {
		return Credential{}, errors.New("credential file has no username")
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return Credential{}, errors.Wrap(err, "failed to decode salt")
	}

	password, err := decrypt(file.Password, deriveKey(passphrase, salt))
	if err != nil {
		return Credential{}, errors.Wrap(err, "failed to decrypt password")
	}

	return Credential{Username: file.Username, Password: string(password)}, nil
}

// Save encrypts cred with the passphrase and writes the credential file
// at path, readable by the owner only.
func Save(path, passphrase string, cred Credential) error {
	if passphrase == "" {
		return errors.New("credential passphrase is empty")
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return errors.Wrap(err, "failed to generate salt")
	}

	sealed, err := encrypt([]byte(cred.Password), deriveKey(passphrase, salt))
	if err != nil {
		return errors.Wrap(err, "failed to encrypt password")
	}

	file := credentialFile{
		Username: cred.Username,
		Password: sealed,
		Salt:     base64.StdEncoding.EncodeToString(salt),
	}

	raw, err := xml.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal credential file")
	}

	if err := os.WriteFile(path, append(raw, '\n'), 0600); err != nil {
		return errors.Wrapf(err, "failed to write credential file %s", path)
	}
	return nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfRounds, keyLength, sha256.New)
}

// encrypt seals plaintext with AES-256-GCM, nonce prepended, base64 encoded.
func encrypt(plaintext, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
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

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func decrypt(encoded string, key []byte) ([]byte, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(payload) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertext, nil)
}

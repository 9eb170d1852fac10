package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidSignature is returned when a signature does not verify.
var ErrInvalidSignature = errors.New("invalid signature")

// Keypair is an ed25519 signing key and its identity.
type Keypair struct {
	private ed25519.PrivateKey
	id      Address
}

// GenerateKeypair creates a new random keypair.
func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return keypairFromPrivate(priv), nil
}

// KeypairFromSeed rebuilds a keypair from its 32-byte seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKeySize
	}
	return keypairFromPrivate(ed25519.NewKeyFromSeed(seed)), nil
}

func keypairFromPrivate(priv ed25519.PrivateKey) *Keypair {
	kp := &Keypair{private: priv}
	copy(kp.id[:], priv.Public().(ed25519.PublicKey))
	return kp
}

// Identity returns the public identity of the keypair.
func (k *Keypair) Identity() Address {
	return k.id
}

// Sign signs msg.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.private, msg)
}

// Seed returns a copy of the private seed. Callers should ZeroBytes it.
func (k *Keypair) Seed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	copy(seed, k.private.Seed())
	return seed
}

// Verify checks that sig is id's signature over msg.
func Verify(id Address, msg, sig []byte) error {
	if len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(id[:]), msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// keyfileVersion is bumped whenever the keyfile layout changes.
const keyfileVersion = 1

// Keyfile is the on-disk form of a passphrase protected keypair.
type Keyfile struct {
	Version       int       `json:"version"`
	Identity      Address   `json:"identity"`
	Salt          []byte    `json:"salt"`
	EncryptedSeed []byte    `json:"encrypted_seed"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaveKeypair encrypts the keypair under passphrase and writes it to path
// with 0600 permissions. Parent directories are created with 0700.
func SaveKeypair(path string, kp *Keypair, passphrase []byte) error {
	salt, err := GenerateSalt()
	if err != nil {
		return err
	}

	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer ZeroBytes(key)

	seed := kp.Seed()
	defer ZeroBytes(seed)

	encrypted, err := Encrypt(key, seed)
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}

	data, err := json.MarshalIndent(&Keyfile{
		Version:       keyfileVersion,
		Identity:      kp.Identity(),
		Salt:          salt,
		EncryptedSeed: encrypted,
		CreatedAt:     time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keyfile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ReadKeyfile reads a keyfile without decrypting it.
func ReadKeyfile(path string) (*Keyfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf Keyfile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keyfile: %w", err)
	}
	if kf.Version != keyfileVersion {
		return nil, fmt.Errorf("unsupported keyfile version %d", kf.Version)
	}
	return &kf, nil
}

// LoadKeypair reads and decrypts a keyfile written by SaveKeypair.
// A wrong passphrase yields ErrDecryptionFailed.
func LoadKeypair(path string, passphrase []byte) (*Keypair, error) {
	kf, err := ReadKeyfile(path)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(passphrase, kf.Salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer ZeroBytes(key)

	seed, err := Decrypt(key, kf.EncryptedSeed)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(seed)

	kp, err := KeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	if kp.Identity() != kf.Identity {
		return nil, fmt.Errorf("keyfile identity mismatch")
	}
	return kp, nil
}

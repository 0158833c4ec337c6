package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"

	"helpdesk/internal/ports"
)

const (
	// MinIterations is also the default; lower values are rejected.
	MinIterations = 480000

	DefaultKeyCacheSize = 64

	keyLength = 32
)

// FailureMarker replaces the notes when the token does not verify.
const FailureMarker = "DECRYPTION FAILED: invalid master secret?"

// saltV1 is fixed so existing tokens keep decrypting. A per-record salt
// would need a token format change.
var saltV1 = []byte("q\x8c\xbf\xe3\x9c\x01\xfd`\xe9\x1f\xd1\xec\x97\xd8\xda\x15")

type Options struct {
	Salt       []byte
	Iterations int
	// CacheSize bounds how many derived keys are kept in memory.
	CacheSize int64
}

// NotesCipher implements ports.NotesCipher with PBKDF2-HMAC-SHA256 key
// derivation and Fernet tokens.
type NotesCipher struct {
	salt       []byte
	iterations int
	keys       *ristretto.Cache[string, *fernet.Key]
}

var _ ports.NotesCipher = (*NotesCipher)(nil)

func NewNotesCipher(opts Options) (*NotesCipher, error) {
	iterations := opts.Iterations
	if iterations == 0 {
		iterations = MinIterations
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("iterations must be at least %d, got %d", MinIterations, iterations)
	}

	salt := opts.Salt
	if len(salt) == 0 {
		salt = saltV1
	}

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultKeyCacheSize
	}

	keys, err := ristretto.NewCache(&ristretto.Config[string, *fernet.Key]{
		NumCounters: cacheSize * 10,
		MaxCost:     cacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create key cache: %w", err)
	}

	return &NotesCipher{
		salt:       append([]byte(nil), salt...),
		iterations: iterations,
		keys:       keys,
	}, nil
}

// DeriveKey returns the URL-safe base64 Fernet key for secret.
func (c *NotesCipher) DeriveKey(secret []byte) string {
	return c.key(secret).Encode()
}

func (c *NotesCipher) Encrypt(plaintext string, secret []byte) (*string, error) {
	if plaintext == "" {
		return nil, nil
	}
	if len(secret) == 0 {
		return nil, errors.New("master secret is required")
	}

	token, err := fernet.EncryptAndSign([]byte(plaintext), c.key(secret))
	if err != nil {
		return nil, fmt.Errorf("encrypt notes: %w", err)
	}

	out := string(token)
	return &out, nil
}

func (c *NotesCipher) Decrypt(ciphertext *string, secret []byte) (string, bool) {
	if ciphertext == nil || *ciphertext == "" {
		return "", true
	}
	if len(secret) == 0 {
		return FailureMarker, false
	}

	// Negative ttl: tokens never expire.
	msg := fernet.VerifyAndDecrypt([]byte(*ciphertext), -1, []*fernet.Key{c.key(secret)})
	if msg == nil {
		return FailureMarker, false
	}
	return string(msg), true
}

func (c *NotesCipher) Close() {
	c.keys.Close()
}

func (c *NotesCipher) key(secret []byte) *fernet.Key {
	digest := sha256.Sum256(secret)
	cacheKey := hex.EncodeToString(digest[:])

	if key, ok := c.keys.Get(cacheKey); ok {
		return key
	}

	derived := pbkdf2.Key(secret, c.salt, c.iterations, keyLength, sha256.New)
	key := new(fernet.Key)
	copy(key[:], derived)

	c.keys.Set(cacheKey, key, 1)
	c.keys.Wait()
	return key
}

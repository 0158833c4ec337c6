package ports

// NotesCipher protects the sensitive-notes field with a key derived from
// the caller's master secret. The secret is never stored.
type NotesCipher interface {
	// Encrypt returns nil for empty plaintext.
	Encrypt(plaintext string, secret []byte) (*string, error)
	// Decrypt returns ("", true) for nil ciphertext and a display marker
	// with ok=false when authentication fails. It never errors.
	Decrypt(ciphertext *string, secret []byte) (plaintext string, ok bool)
}

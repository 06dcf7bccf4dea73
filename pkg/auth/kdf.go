// Package auth implements the authentication and session authority: the
// server side of the salted double-hash login handshake and the in-memory
// session registry every request is gated through.
//
// Credentials arrive pre-hashed. The client derives
//
//	identityToken = KDF(username, salt derived from username)
//	passwordHash  = KDF(password, salt derived from identityToken)
//
// with a memory-hard KDF before transmission, so the server never sees a
// plaintext username or password. The functions here implement the server's
// own layer on top: every stored hash is KDF(clientHash, serverSalt) with a
// per-account random salt, never the client value itself.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for the server-side re-hash. The input is already a
// KDF output, so these lean toward throughput over the cost a raw password
// would demand.
const (
	kdfTime        uint32 = 1
	kdfMemoryKB    uint32 = 64 * 1024
	kdfParallelism uint8  = 4
	kdfKeyLength   uint32 = 32

	saltLength = 16
)

// NewSalt returns a fresh hex-encoded random salt for a new account.
func NewSalt() (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// DeriveKey computes the at-rest hash for a client-supplied hash and a
// hex-encoded server salt.
func DeriveKey(clientHash, saltHex string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("invalid salt encoding: %w", err)
	}

	key := argon2.IDKey([]byte(clientHash), salt, kdfTime, kdfMemoryKB, kdfParallelism, kdfKeyLength)
	return hex.EncodeToString(key), nil
}

// VerifyKey re-derives the at-rest hash from a client-supplied hash and
// compares it to the stored value in constant time.
func VerifyKey(clientHash, saltHex, storedHex string) bool {
	derived, err := DeriveKey(clientHash, saltHex)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHex)) == 1
}

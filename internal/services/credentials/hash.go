package credentials

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mcoot/tallyledger/internal/dependencies/random"
)

// Serialised credential format: pbkdf2_sha256$<iterations>$<salt hex>$<hash hex>
const (
	Algorithm         = "pbkdf2_sha256"
	DefaultIterations = 100_000
	SaltBytes         = 16
)

// HashPin derives a credential for pin using a fresh random salt
func HashPin(rnd random.Random, pin string, iterations int) (string, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	salt, err := rnd.Bytes(SaltBytes)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := derive(pin, salt, iterations)
	return fmt.Sprintf("%s$%d$%s$%s", Algorithm, iterations, hex.EncodeToString(salt), sum), nil
}

// VerifyPin reports whether pin matches the stored credential.
// Malformed credentials never match.
func VerifyPin(pin, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != Algorithm {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := derive(pin, salt, iterations)
	return subtle.ConstantTimeCompare([]byte(got), []byte(parts[3])) == 1
}

func derive(pin string, salt []byte, iterations int) string {
	key := pbkdf2.Key([]byte(pin), salt, iterations, sha256.Size, sha256.New)
	return hex.EncodeToString(key)
}

package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	memory   = 64 * 1024
	timeCost = 1
	threads  = 4
	saltLen  = 16
	keyLen   = 32
)

// Hash derives an argon2id hash in the standard encoded form.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, keyLen)
	encoded := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		timeCost,
		threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify checks a password against an encoded argon2id hash. Parameters
// are read from the hash so cost changes do not invalidate old hashes.
func Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	var m uint32
	var t uint32
	var p uint8
	{
		params := strings.Split(parts[3], ",")
		if len(params) != 3 {
			return false
		}

		mRaw, ok := strings.CutPrefix(params[0], "m=")
		if !ok {
			return false
		}
		tRaw, ok := strings.CutPrefix(params[1], "t=")
		if !ok {
			return false
		}
		pRaw, ok := strings.CutPrefix(params[2], "p=")
		if !ok {
			return false
		}

		m64, err := strconv.ParseUint(mRaw, 10, 32)
		if err != nil {
			return false
		}
		t64, err := strconv.ParseUint(tRaw, 10, 32)
		if err != nil {
			return false
		}
		p64, err := strconv.ParseUint(pRaw, 10, 8)
		if err != nil {
			return false
		}

		m = uint32(m64)
		t = uint32(t64)
		p = uint8(p64)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}

package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"critique/internal/models"

	"golang.org/x/crypto/hkdf"
)

const (
	codeKeyInfo = "critique/confirmation-code/v1"
	codeMACLen  = 20
	// codeClockSkew tolerates codes minted by a node whose clock runs slightly ahead.
	codeClockSkew = time.Minute
)

// ConfirmationCodes mints and checks confirmation codes without storing them.
// A code is "<issued-at base36>-<mac>" where the MAC covers the user's id,
// username, email and security stamp, so changing any of them invalidates
// every code issued before.
type ConfirmationCodes struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewConfirmationCodes derives the MAC key from secret.
func NewConfirmationCodes(secret string, ttl time.Duration) (*ConfirmationCodes, error) {
	if secret == "" {
		return nil, fmt.Errorf("confirmation codes need a non-empty secret")
	}
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(codeKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive confirmation key: %w", err)
	}
	return &ConfirmationCodes{key: key, ttl: ttl, now: time.Now}, nil
}

// Generate returns a fresh code for u.
func (c *ConfirmationCodes) Generate(u *models.User) string {
	ts := strconv.FormatInt(c.now().Unix(), 36)
	return ts + "-" + c.mac(u, ts)
}

// Verify reports whether code was generated for u in its current state and
// has not expired.
func (c *ConfirmationCodes) Verify(u *models.User, code string) bool {
	ts, mac, ok := strings.Cut(strings.TrimSpace(code), "-")
	if !ok || ts == "" || mac == "" {
		return false
	}
	issued, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return false
	}

	age := c.now().Sub(time.Unix(issued, 0))
	if age < -codeClockSkew || (c.ttl > 0 && age > c.ttl) {
		return false
	}
	return hmac.Equal([]byte(mac), []byte(c.mac(u, ts)))
}

func (c *ConfirmationCodes) mac(u *models.User, ts string) string {
	h := hmac.New(sha256.New, c.key)
	fmt.Fprintf(h, "%d\x00%s\x00%s\x00%s\x00%s", u.ID, u.Username, strings.ToLower(u.Email), u.SecurityStamp, ts)
	return hex.EncodeToString(h.Sum(nil))[:codeMACLen]
}

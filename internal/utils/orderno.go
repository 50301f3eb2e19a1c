package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// OrderNoPrefix starts every human-readable order number.
const OrderNoPrefix = "SURYA-"

// NewOrderNumber returns "SURYA-<unix seconds>-<12 hex chars>".
// The random suffix keeps numbers unique for orders created within the same second.
func NewOrderNumber(now time.Time) (string, error) {
	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	return OrderNoPrefix + strconv.FormatInt(now.Unix(), 10) + "-" + hex.EncodeToString(suffix[:]), nil
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateBookingReference returns a human-readable booking reference like
// "LR-20260829-K7M2Q3". Confusable characters (0, O, 1, I, L) are excluded.
func GenerateBookingReference(at time.Time) string {
	suffix := make([]byte, 6)
	charsetLen := big.NewInt(int64(len(referenceCharset)))
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, charsetLen)
		suffix[i] = referenceCharset[n.Int64()]
	}
	return fmt.Sprintf("LR-%s-%s", at.Format("20060102"), string(suffix))
}

// GenerateSessionID returns an opaque key for flow-state persistence.
func GenerateSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func GenerateRequestID() string {
	return uuid.NewString()
}

package xid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// Entity prefixes. Every externally visible identifier is the prefix, a
// dash and a numeric suffix.
const (
	VendorPrefix  = "VEN"
	ProductPrefix = "PRD"
	OrderPrefix   = "PO"
	OrderIDPrefix = "ORD"
	PosPrefix     = "POS"
	BankPrefix    = "BNK"
	AuditPrefix   = "LOG"
)

// suffixSpace is the size of the random suffix space (10 decimal digits).
// Wide enough that a collision is practically unreachable for any realistic
// catalog size; the storage layer's uniqueness constraint is still the
// authoritative backstop.
const suffixSpace = 10_000_000_000

// New mints an identifier of the form PREFIX-0123456789 with a uniformly
// random 10-digit suffix.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand should never fail; fall back to a timestamp suffix
		// rather than panic on an id draw.
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()%suffixSpace)
	}
	n := binary.BigEndian.Uint64(buf) % suffixSpace
	return fmt.Sprintf("%s-%010d", prefix, n)
}

// OrderNumber formats a sequence value into an order number, zero-padded to
// six digits so numbers sort and read monotonically.
func OrderNumber(seq int64) string {
	return fmt.Sprintf("%s-%06d", OrderPrefix, seq)
}

package resilience

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// IdempotencyKey derives a stable key from (item_id, stage, seed) so retries
// of the same logical call reuse the same key while distinct calls (or
// distinct items/stages) never collide. seed should stay constant across an
// operation's retry attempts; pass a per-attempt-batch nonce, not a
// per-attempt counter.
func IdempotencyKey(itemID, stage, seed string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", itemID, stage, seed)))
	return hex.EncodeToString(sum[:])[:32]
}

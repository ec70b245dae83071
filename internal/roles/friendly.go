package roles

import (
	"math/rand"
	"strconv"
)

// GenerateFriendlyID produces a human-readable account reference: the role's
// two-letter prefix followed by ten random decimal digits, e.g. DR4821093456.
// The floor of 1_000_000_000 keeps the leading digit non-zero.
//
// Known weakness carried over from the original system: the number is drawn
// client-side with no collision check against existing accounts, so global
// uniqueness is not guaranteed. The friendly ID is a display reference only
// and never an authentication key.
func GenerateFriendlyID(role Role) string {
	n := 1_000_000_000 + rand.Int63n(9_000_000_000)
	return role.Prefix() + strconv.FormatInt(n, 10)
}

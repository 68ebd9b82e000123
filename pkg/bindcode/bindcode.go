package bindcode

import (
	"crypto/rand"
	"math/big"
)

// Length is the number of characters in a generated bind code.
const Length = 6

// alphabet excludes nothing; codes are case-normalized to upper on both
// generation and lookup, so the charset is digits plus A-Z.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// New generates a short bind code used to link a Discord account to a
// Minecraft account. Uniqueness is not enforced; the 10-minute expiry
// window keeps the live code population small.
func New() string {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}

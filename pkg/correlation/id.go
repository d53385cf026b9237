package correlation

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	idAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	idSuffixLength = 9
)

// NewID generates a correlation id for requests that arrive without one.
// The millisecond prefix keeps ids sortable by creation time.
func NewID() string {
	suffix := make([]byte, idSuffixLength)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}

	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + string(suffix)
}

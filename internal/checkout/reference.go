package checkout

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceRandLen = 5

// GenerateOrderReference returns "ORD-<base36 unix ms>-<5 random base36>",
// uppercased. Uniqueness is probabilistic; the orders table enforces it.
func GenerateOrderReference() string {
	return referenceAt(time.Now())
}

func referenceAt(now time.Time) string {
	id := uuid.New()
	random := strconv.FormatUint(binary.BigEndian.Uint64(id[8:]), 36)
	if len(random) < referenceRandLen {
		random = strings.Repeat("0", referenceRandLen-len(random)) + random
	}
	random = random[len(random)-referenceRandLen:]
	return strings.ToUpper("ORD-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + random)
}

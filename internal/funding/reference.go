package funding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference prefixes used in user-facing identifiers.
const (
	RefPrefixDeposit     = "DEP"
	RefPrefixWithdrawal  = "WTH"
	RefPrefixTransaction = "TXN"
)

// NewReference generates a unique human-shareable reference id of the form
// <PREFIX>-<millisecond timestamp in uppercase base36>-<8 uppercase hex chars>.
func NewReference(prefix string) string {
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	random := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, random)
}

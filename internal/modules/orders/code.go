package orders

import (
	"fmt"
	"time"
)

// NewCode generates an order code from the last four digits of the
// current unix-millisecond clock, e.g. "ORD-4821". Short and readable
// over the phone; codes repeat every ten seconds, which is fine because
// documents are keyed by backend id, never by code.
func NewCode(now time.Time) string {
	ms := now.UnixMilli()
	return fmt.Sprintf("ORD-%04d", ms%10000)
}

package delivery

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber generates a human-readable order number of the form
// DLV-YYYYMMDD-XXXXXX with a random hex suffix. Order numbers are generated
// once at creation and never reused; global uniqueness is enforced by the
// registry's unique index, and callers regenerate on a collision.
func NewOrderNumber(at time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("DLV-%s-%s", at.Format("20060102"), strings.ToUpper(hex.EncodeToString(id[:3])))
}

package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a collision-resistant order number such as
// ORD-20240131-7F3A2C. Uniqueness is still enforced by the orders table
// constraint; the random suffix just makes collisions vanishingly rare.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}

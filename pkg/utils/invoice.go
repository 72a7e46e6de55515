package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateInvoiceNo generates a unique invoice number such as INV-20240131-1A2B3C4D
func GenerateInvoiceNo(at time.Time) string {
	return "INV-" + at.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}

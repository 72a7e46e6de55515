package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SaleStatus represents the status of a sale
type SaleStatus int

const (
	SaleStatusPending   SaleStatus = 0
	SaleStatusCompleted SaleStatus = 1
	SaleStatusCancelled SaleStatus = 2
)

var saleStatusNames = [...]string{"Pending", "Completed", "Cancelled"}

func (s SaleStatus) String() string {
	if s < 0 || int(s) >= len(saleStatusNames) {
		return "Unknown"
	}
	return saleStatusNames[s]
}

// ParseSaleStatus parses a status name, case-insensitively
func ParseSaleStatus(str string) (SaleStatus, error) {
	for i, name := range saleStatusNames {
		if strings.EqualFold(strings.TrimSpace(str), name) {
			return SaleStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sale status %q", str)
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if i < 0 || i >= len(saleStatusNames) {
			return fmt.Errorf("unknown sale status %d", i)
		}
		*s = SaleStatus(i)
		return nil
	}
	parsed, err := ParseSaleStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleStatus", value)
	}
	return nil
}

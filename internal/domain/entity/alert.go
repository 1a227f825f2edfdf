package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// AlertValue is the old or new comparison value of an alert. Its type
// depends on the alert type (a price is a number, a stock flag may be a
// string), so it is kept as the textual form of whatever arrived.
type AlertValue string

// UnmarshalJSON accepts string, number, bool and null encodings.
func (v *AlertValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AlertValue(s)
		return nil
	}
	*v = AlertValue(trimmed)
	return nil
}

func (v AlertValue) String() string {
	return string(v)
}

// AlertLogEntry is one record of the alert-history log. Entries reference
// products by SKU and are owned entirely by the backend alert subsystem;
// the dashboard only renders them.
type AlertLogEntry struct {
	SKU         string     `json:"sku"`
	Type        string     `json:"type"`
	OldValue    AlertValue `json:"oldValue"`
	NewValue    AlertValue `json:"newValue"`
	TriggeredAt time.Time  `json:"triggeredAt"`
	Message     string     `json:"message"`
}

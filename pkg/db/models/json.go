package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// JSON is a raw JSON document stored in a TEXT (sqlite) or JSONB
// (postgres) column. Empty documents are stored as NULL.
type JSON []byte

// EmptyObject is the JSON document `{}`.
var EmptyObject = JSON(`{}`)

// IsZero reports whether the document is empty or null.
func (j JSON) IsZero() bool {
	return len(j) == 0 || string(j) == "null"
}

// OrDefault returns j, or def when j is empty or null.
func (j JSON) OrDefault(def JSON) JSON {
	if j.IsZero() {
		return def
	}
	return j
}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j.IsZero() {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", src)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSON) UnmarshalJSON(b []byte) error {
	if j == nil {
		return errors.New("models.JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[:0], b...)
	return nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Ring is a closed polygon ring of (longitude, latitude) pairs describing a
// parcel boundary. It is stored as a JSONB array of [lon, lat] pairs.
// A nil or empty Ring means no survey geometry exists yet.
//
// The ring is not required to repeat its first point; consumers close it
// implicitly when computing metrics.
type Ring [][2]float64

// Scan implements sql.Scanner for reading a ring from a JSONB column.
func (r *Ring) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan Ring: expected []byte or string, got %T", value)
	}

	if len(bytes) == 0 {
		*r = nil
		return nil
	}

	var coords [][2]float64
	if err := json.Unmarshal(bytes, &coords); err != nil {
		return fmt.Errorf("failed to unmarshal ring coordinates: %w", err)
	}

	*r = coords
	return nil
}

// Value implements driver.Valuer for writing a ring to a JSONB column.
// An empty ring is stored as NULL.
func (r Ring) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}

	bytes, err := json.Marshal([][2]float64(r))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ring coordinates: %w", err)
	}

	return bytes, nil
}

// Closed reports whether the ring explicitly repeats its first point.
func (r Ring) Closed() bool {
	if len(r) < 2 {
		return false
	}
	return r[0] == r[len(r)-1]
}

// Dimension shape hints. Advisory only; never used in metric computation
// when geometry is present.
const (
	ShapeRectangle = "rectangle"
	ShapeCustom    = "custom"
)

// Dimensions is an optional operator-entered shape hint for a parcel,
// stored as JSONB.
type Dimensions struct {
	Shape   string   `json:"shape"`
	LengthM *float64 `json:"lengthM,omitempty"`
	WidthM  *float64 `json:"widthM,omitempty"`
}

// Scan implements sql.Scanner for reading dimensions from a JSONB column.
func (d *Dimensions) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan Dimensions: expected []byte or string, got %T", value)
	}

	if err := json.Unmarshal(bytes, d); err != nil {
		return fmt.Errorf("failed to unmarshal dimensions: %w", err)
	}
	return nil
}

// Value implements driver.Valuer for writing dimensions to a JSONB column.
func (d Dimensions) Value() (driver.Value, error) {
	bytes, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dimensions: %w", err)
	}
	return bytes, nil
}

// Valid reports whether the shape hint is one of the known shapes.
func (d Dimensions) Valid() bool {
	return d.Shape == ShapeRectangle || d.Shape == ShapeCustom
}

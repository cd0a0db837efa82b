// Package place defines the bookmarked place record and its construction rules.
package place

import (
	"fmt"
	"math"
	"strings"
)

// Location is where a place was captured. Address is resolved externally
// from the coordinates.
type Location struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Address string  `json:"address" yaml:"address"`
}

// InRange reports whether the coordinates fall inside the valid WGS84 range.
// Records outside the range are still accepted.
func (l Location) InRange() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Record is one bookmarked place. ID is zero until the store assigns one.
type Record struct {
	ID       int64    `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string   `json:"title" yaml:"title"`
	ImageURI string   `json:"imageUri" yaml:"imageUri"`
	Location Location `json:"location" yaml:"location"`
}

// ValidationError reports a malformed record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid place %s: %s", e.Field, e.Reason)
}

// New builds a transient record from user input. The returned record has no ID.
func New(title, imageURI string, loc Location) (Record, error) {
	r := Record{Title: title, ImageURI: imageURI, Location: loc}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Restore rebuilds a record that was read back from storage.
func Restore(id int64, title, imageURI string, loc Location) (Record, error) {
	if id <= 0 {
		return Record{}, &ValidationError{Field: "id", Reason: fmt.Sprintf("must be positive, got %d", id)}
	}
	r := Record{ID: id, Title: title, ImageURI: imageURI, Location: loc}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// HasID reports whether the record has been persisted.
func (r Record) HasID() bool {
	return r.ID != 0
}

// Validate checks the fields required at persistence time.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.ImageURI) == "" {
		return &ValidationError{Field: "imageUri", Reason: "must not be empty"}
	}
	if !finite(r.Location.Lat) {
		return &ValidationError{Field: "lat", Reason: "must be a finite number"}
	}
	if !finite(r.Location.Lng) {
		return &ValidationError{Field: "lng", Reason: "must be a finite number"}
	}
	if strings.TrimSpace(r.Location.Address) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

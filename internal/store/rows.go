package store

import (
	"database/sql"
	"errors"

	"placebook/internal/place"
)

const placeColumns = "id, title, imageUri, address, lat, lng"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPlace maps one places row onto a record. Every column is required;
// NULLs, values that do not convert, and rows that fail record validation
// are reported as *DecodeError.
func scanPlace(row rowScanner) (place.Record, error) {
	var (
		id                       sql.NullInt64
		title, imageURI, address sql.NullString
		lat, lng                 sql.NullFloat64
	)
	if err := row.Scan(&id, &title, &imageURI, &address, &lat, &lng); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return place.Record{}, err
		}
		return place.Record{}, &DecodeError{Err: err}
	}

	for _, col := range []struct {
		name  string
		valid bool
	}{
		{"id", id.Valid},
		{"title", title.Valid},
		{"imageUri", imageURI.Valid},
		{"address", address.Valid},
		{"lat", lat.Valid},
		{"lng", lng.Valid},
	} {
		if !col.valid {
			return place.Record{}, &DecodeError{Column: col.name, Err: ErrNullColumn}
		}
	}

	rec, err := place.Restore(id.Int64, title.String, imageURI.String, place.Location{
		Lat:     lat.Float64,
		Lng:     lng.Float64,
		Address: address.String,
	})
	if err != nil {
		return place.Record{}, &DecodeError{Err: err}
	}
	return rec, nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Sentinel values substituted when a field cannot be extracted
const (
	PriceNotAvailable = "Not available"
	NoRatingText      = "No rating"
)

// MaxRating is the top of the rating scale used by every platform
const MaxRating = 5.0

// ProductRecord is a single normalized listing scraped from a search results page
type ProductRecord struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Link     string `json:"link"`
	Rating   Rating `json:"rating"`
	ImageURL string `json:"image_url"`
	Platform string `json:"platform"`
}

// Valid reports whether the record carries the two mandatory fields
func (p ProductRecord) Valid() bool {
	return p.Title != "" && p.Link != ""
}

// Rating is an optional score on a 0-5 scale.
// The zero value means no rating was found.
type Rating struct {
	Value float64
	Valid bool
}

// NoRating is the absent rating
var NoRating = Rating{}

// NewRating returns a present rating clamped to the 0-5 scale
func NewRating(v float64) Rating {
	if math.IsNaN(v) {
		return NoRating
	}
	return Rating{Value: math.Max(0, math.Min(MaxRating, v)), Valid: true}
}

// String renders the rating the same way it appears on the wire
func (r Rating) String() string {
	if !r.Valid {
		return NoRatingText
	}
	return strconv.FormatFloat(r.Value, 'f', 1, 64)
}

// MarshalJSON encodes a present rating as a number with one decimal
// and an absent rating as the "No rating" string.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(NoRatingText)
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', 1, 64)), nil
}

// UnmarshalJSON accepts either a number or the "No rating" string
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = NoRating
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == NoRatingText || s == "" {
			*r = NoRating
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid rating %q", s)
		}
		*r = NewRating(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid rating: %w", err)
	}
	*r = NewRating(v)
	return nil
}

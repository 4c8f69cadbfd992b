// Package property maps backend property records into the display shape
// shared by every view. Backend payloads are loose: ids and prices arrive
// as numbers or strings and field names vary between endpoints, so the
// projection is built from a generic record rather than a fixed struct.
package property

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Record is a raw backend property payload.
type Record map[string]any

// Property is the display-ready projection of a backend property record.
type Property struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Location string `json:"location"`
	Bedrooms int    `json:"bedrooms"`
	Image    string `json:"image,omitempty"`
}

// FromBackend builds a Property from a raw record, applying the same
// defaults and field aliases the saved-properties view has always used.
func FromBackend(rec Record) Property {
	p := Property{
		ID:       stringField(rec, "id"),
		Title:    stringField(rec, "title"),
		Price:    priceField(rec, "price"),
		Location: stringField(rec, "location"),
		Bedrooms: intField(rec, "bedrooms", "bedrooms_count"),
		Image:    stringField(rec, "image", "image_url"),
	}
	if p.Title == "" {
		p.Title = "Untitled Property"
	}
	if p.Location == "" {
		p.Location = "Unknown Location"
	}
	if p.Price == "" {
		p.Price = "0"
	}
	return p
}

// FromBackendList projects a slice of raw records, skipping entries without an id.
func FromBackendList(recs []Record) []Property {
	out := make([]Property, 0, len(recs))
	for _, rec := range recs {
		p := FromBackend(rec)
		if p.ID == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ToBackend reconstructs the payload shape the save endpoint expects.
func (p Property) ToBackend() map[string]any {
	data := map[string]any{
		"id":       p.ID,
		"title":    p.Title,
		"price":    p.Price,
		"location": p.Location,
		"bedrooms": p.Bedrooms,
	}
	if p.Image != "" {
		data["image"] = p.Image
		data["image_url"] = p.Image
	}
	return data
}

// Card renders the one-line text card shown beneath assistant messages.
func (p Property) Card() string {
	return fmt.Sprintf("[%s] %s — %s, %d BR, %s", p.ID, p.Title, p.Location, p.Bedrooms, p.Price)
}

func stringField(rec Record, keys ...string) string {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

func intField(rec Record, keys ...string) int {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case float64:
			if v > 0 {
				return int(v)
			}
		case int:
			if v > 0 {
				return v
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// priceField formats numeric prices with thousands separators; string
// prices arrive already formatted and pass through untouched.
func priceField(rec Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return humanize.Comma(int64(v))
		}
		return humanize.Commaf(v)
	case int:
		return humanize.Comma(int64(v))
	}
	return ""
}

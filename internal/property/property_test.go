package property

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBackend_FullRecord(t *testing.T) {
	p := FromBackend(Record{
		"id":       "p1",
		"title":    "Sunrise Flat",
		"price":    "45,000",
		"location": "Mumbai",
		"bedrooms": float64(2),
		"image":    "https://img.example.com/p1.jpg",
	})
	require.Equal(t, "p1", p.ID)
	require.Equal(t, "Sunrise Flat", p.Title)
	require.Equal(t, "45,000", p.Price)
	require.Equal(t, "Mumbai", p.Location)
	require.Equal(t, 2, p.Bedrooms)
	require.Equal(t, "https://img.example.com/p1.jpg", p.Image)
}

func TestFromBackend_LoosePayload(t *testing.T) {
	p := FromBackend(Record{
		"id":             float64(42),
		"price":          float64(1250000),
		"bedrooms_count": float64(3),
		"image_url":      "https://img.example.com/42.jpg",
	})
	require.Equal(t, "42", p.ID)
	require.Equal(t, "Untitled Property", p.Title)
	require.Equal(t, "1,250,000", p.Price)
	require.Equal(t, "Unknown Location", p.Location)
	require.Equal(t, 3, p.Bedrooms)
	require.Equal(t, "https://img.example.com/42.jpg", p.Image)
}

func TestFromBackend_EmptyRecord(t *testing.T) {
	p := FromBackend(Record{})
	require.Equal(t, "", p.ID)
	require.Equal(t, "Untitled Property", p.Title)
	require.Equal(t, "0", p.Price)
	require.Equal(t, "Unknown Location", p.Location)
	require.Equal(t, 0, p.Bedrooms)
}

func TestFromBackendList_SkipsRecordsWithoutID(t *testing.T) {
	out := FromBackendList([]Record{
		{"id": "a", "title": "A"},
		{"title": "no id"},
		{"id": "b", "title": "B"},
	})
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "b", out[1].ID)
}

func TestToBackend_RoundTripsImageAliases(t *testing.T) {
	p := Property{ID: "p9", Title: "Loft", Price: "80,000", Location: "Pune", Bedrooms: 1, Image: "x.jpg"}
	data := p.ToBackend()
	require.Equal(t, "x.jpg", data["image"])
	require.Equal(t, "x.jpg", data["image_url"])
	require.Equal(t, "p9", data["id"])

	noImage := Property{ID: "p10"}.ToBackend()
	require.NotContains(t, noImage, "image")
}

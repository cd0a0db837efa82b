package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPreviewURL(t *testing.T) {
	got := MapPreviewURL("", "abc", 48.8584, 2.2945)
	want := "https://maps.googleapis.com/maps/api/staticmap?center=48.8584,2.2945" +
		"&zoom=14&size=400x200&maptype=roadmap" +
		"&markers=color:red%7Clabel:P%7C48.8584,2.2945&key=abc"
	assert.Equal(t, want, got)
}

func TestClientMapPreviewURL(t *testing.T) {
	c, err := NewClient("http://localhost:8080/", "k", 0)
	assert.NoError(t, err)
	assert.Equal(t,
		"http://localhost:8080/maps/api/staticmap?center=-33.8568,151.2153&zoom=14&size=400x200&maptype=roadmap&markers=color:red%7Clabel:P%7C-33.8568,151.2153&key=k",
		c.MapPreviewURL(-33.8568, 151.2153))
}

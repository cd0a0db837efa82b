package geocode

import (
	"net/url"
	"strings"
)

// Static map preview parameters.
const (
	previewZoom    = "14"
	previewSize    = "400x200"
	previewMapType = "roadmap"
)

// MapPreviewURL builds a static map image URL centered on the coordinates
// with a red marker labelled P. An empty baseURL selects DefaultBaseURL.
func MapPreviewURL(baseURL, apiKey string, lat, lng float64) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	center := formatCoord(lat) + "," + formatCoord(lng)

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/maps/api/staticmap?center=")
	b.WriteString(center)
	b.WriteString("&zoom=" + previewZoom)
	b.WriteString("&size=" + previewSize)
	b.WriteString("&maptype=" + previewMapType)
	b.WriteString("&markers=color:red%7Clabel:P%7C")
	b.WriteString(center)
	b.WriteString("&key=")
	b.WriteString(url.QueryEscape(apiKey))
	return b.String()
}

// Package mapview renders query results as standalone HTML map documents.
package mapview

import (
	"fmt"
	"html/template"
	"io"
)

// LatLon is a WGS84 coordinate in degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Marker is one pinned vehicle. Label is shown as plain text in its popup.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// Document is everything needed to draw one map
type Document struct {
	Title   string
	Center  LatLon
	Zoom    int
	Markers []Marker
}

// Renderer writes a renderable map document
type Renderer interface {
	Render(w io.Writer, doc Document) error
}

// Leaflet renders documents as an HTML page using the Leaflet library from a CDN
type Leaflet struct {
	tmpl *template.Template
}

// NewLeaflet parses the page template
func NewLeaflet() *Leaflet {
	return &Leaflet{tmpl: template.Must(template.New("map").Parse(leafletPage))}
}

// Render writes doc as a complete HTML page
func (l *Leaflet) Render(w io.Writer, doc Document) error {
	if doc.Markers == nil {
		doc.Markers = []Marker{}
	}
	if err := l.tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

const leafletPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
.popup { white-space: pre-line; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var center = {{.Center}};
var markers = {{.Markers}};
var map = L.map('map').setView([center.lat, center.lon], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
markers.forEach(function (m) {
  var popup = document.createElement('div');
  popup.className = 'popup';
  popup.textContent = m.label;
  L.marker([m.lat, m.lon]).bindPopup(popup).addTo(map);
});
</script>
</body>
</html>
`

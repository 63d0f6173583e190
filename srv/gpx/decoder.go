// Package gpx decodes GPX track data and computes route profiles.
package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Point represents a single track point. Elevation is nil when the
// source element carried no nested <ele> value.
type Point struct {
	Lat       float64
	Lon       float64
	Elevation *float64
}

// ParseError reports GPX text that does not yield a usable track.
// A route needs at least one segment, so fewer than 2 points is an error.
type ParseError struct {
	Points int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "gpx: malformed document: " + e.Err.Error()
	}
	return fmt.Sprintf("gpx: track has %d usable points, need at least 2", e.Points)
}

func (e *ParseError) Unwrap() error { return e.Err }

// trkpt mirrors the two GPX track point forms: the full element with a
// nested elevation child, and the minimal self-closing coordinate-only
// form, where Ele stays nil.
type trkpt struct {
	Lat float64  `xml:"lat,attr"`
	Lon float64  `xml:"lon,attr"`
	Ele *float64 `xml:"ele"`
}

// Decode extracts the ordered track point sequence from raw GPX text.
//
// Two extraction strategies run over the document: one collects track
// points carrying a nested <ele> value, the other collects bare
// coordinate-only points. Whichever strategy yields points is used
// exclusively, so a sequence is never assembled from a mix of the two
// forms; elevation-bearing points take precedence.
func Decode(raw string) ([]Point, error) {
	withEle, bare, err := extractTrackPoints(raw)
	if err != nil {
		return nil, err
	}

	points := withEle
	if len(points) == 0 {
		points = bare
	}
	if len(points) < 2 {
		return nil, &ParseError{Points: len(points)}
	}
	return points, nil
}

func extractTrackPoints(raw string) (withEle, bare []Point, err error) {
	dec := xml.NewDecoder(strings.NewReader(raw))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &ParseError{Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "trkpt" {
			continue
		}

		var pt trkpt
		if err := dec.DecodeElement(&pt, &se); err != nil {
			return nil, nil, &ParseError{Err: err}
		}

		if pt.Ele != nil {
			withEle = append(withEle, Point{Lat: pt.Lat, Lon: pt.Lon, Elevation: pt.Ele})
		} else {
			bare = append(bare, Point{Lat: pt.Lat, Lon: pt.Lon})
		}
	}

	return withEle, bare, nil
}

// Package chart renders the window trend chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"salesboard/internal/calendar"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Default canvas size.
const (
	DefaultWidth  = 1000
	DefaultHeight = 600
)

// ErrNoPoints is returned when there is nothing to plot.
var ErrNoPoints = errors.New("chart has no points")

// Point is one plotted value.
type Point struct {
	Key   calendar.DateKey
	Value float64
}

// Input describes a trend chart. Points are placed on the x axis at the
// position of their key in Window; the marker is drawn at Anchor.
type Input struct {
	Title      string
	SeriesName string
	MarkerName string
	XAxisName  string
	YAxisName  string
	Window     []calendar.DateKey
	Anchor     calendar.DateKey
	Points     []Point
	Width      int
	Height     int

	// Font replaces the bundled font, which has no Hangul glyphs.
	Font *truetype.Font
}

// LoadFont parses a TrueType font file for Input.Font.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// ParseFormat accepts "png" and "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported chart format: %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return chart.ContentTypeSVG
	}
	return chart.ContentTypePNG
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotWidth:    4,
		DotColor:    col,
	}
}

func markerStyle() chart.Style {
	return chart.Style{
		StrokeColor:     drawing.ColorRed,
		StrokeWidth:     1.5,
		StrokeDashArray: []float64{6, 4},
	}
}

// Render draws in as a line chart with a dashed vertical marker.
func Render(in Input, f Format) ([]byte, error) {
	if len(in.Points) == 0 {
		return nil, ErrNoPoints
	}

	index := make(map[calendar.DateKey]int, len(in.Window))
	for i, k := range in.Window {
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}

	xs := make([]float64, 0, len(in.Points))
	ys := make([]float64, 0, len(in.Points))
	for _, p := range in.Points {
		i, ok := index[p.Key]
		if !ok {
			return nil, fmt.Errorf("point %s is outside the window", p.Key)
		}
		xs = append(xs, float64(i))
		ys = append(ys, p.Value)
	}

	yMin, yMax := valueRange(ys)
	xMin, xMax := -0.5, float64(len(in.Window))-0.5

	seriesName := in.SeriesName
	if seriesName == "" {
		seriesName = "avg quantity"
	}
	markerName := in.MarkerName
	if markerName == "" {
		markerName = "selected date"
	}

	series := []chart.Series{
		chart.ContinuousSeries{Name: seriesName, XValues: xs, YValues: ys, Style: pointStyle(chart.ColorBlue)},
	}
	if at, ok := index[in.Anchor]; ok {
		series = append(series, chart.ContinuousSeries{
			Name:    markerName,
			XValues: []float64{float64(at), float64(at)},
			YValues: []float64{yMin, yMax},
			Style:   markerStyle(),
		})
	}

	xName, yName := in.XAxisName, in.YAxisName
	if xName == "" {
		xName = "week-weekday"
	}
	if yName == "" {
		yName = "avg quantity"
	}

	width, height := in.Width, in.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	ch := chart.Chart{
		Title:      in.Title,
		Font:       in.Font,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 48}},
		XAxis: chart.XAxis{
			Name:  xName,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: ticks(in.Window),
			Style: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	provider := chart.PNG
	if f == SVG {
		provider = chart.SVG
	}

	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ticks labels every window position with its "week-weekday" key. go-chart
// takes the x range from the ticks, so unlabelled ticks half a step outside
// the window keep a one-day window from collapsing to a zero-width axis.
func ticks(window []calendar.DateKey) []chart.Tick {
	out := make([]chart.Tick, 0, len(window)+2)
	out = append(out, chart.Tick{Value: -0.5})
	for i, k := range window {
		out = append(out, chart.Tick{Value: float64(i), Label: k.String()})
	}
	return append(out, chart.Tick{Value: float64(len(window)) - 0.5})
}

// valueRange returns a non-empty y range covering ys, anchored at zero when
// all values share a sign.
func valueRange(ys []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}

	if lo >= 0 {
		lo = 0
	} else {
		lo *= 1.1
	}
	if hi <= 0 {
		hi = 0
	} else {
		hi *= 1.1
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

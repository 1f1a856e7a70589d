// Package plot derives chart-ready payloads from streamed tabular data.
// A single pass over the file collects the independent-axis values and the
// numeric series for each dependent column, then shapes them per plot kind.
package plot

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"strconv"
	"strings"

	"surveylens/internal/pkg/csvtable"
)

type Kind string

const (
	KindScatter   Kind = "scatter"
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
	KindHeatmap   Kind = "heatmap"
	KindBox       Kind = "box"
	KindArea      Kind = "area"
)

var (
	ErrInvalidRequest = errors.New("invalid plot request")
	ErrNoData         = errors.New("no usable data for requested axes")
)

// ParseKind maps a wire-level plot type string onto a known Kind.
func ParseKind(raw string) (Kind, bool) {
	switch k := Kind(strings.TrimSpace(raw)); k {
	case KindScatter, KindBar, KindLine, KindPie, KindHistogram, KindHeatmap, KindBox, KindArea:
		return k, true
	default:
		return "", false
	}
}

// Trace is one chart series in the produced payload. Field usage varies by
// kind; unused fields stay empty and are dropped from the JSON encoding.
type Trace struct {
	Type   string      `json:"type"`
	Name   string      `json:"name,omitempty"`
	X      interface{} `json:"x,omitempty"`
	Y      interface{} `json:"y,omitempty"`
	Z      [][]float64 `json:"z,omitempty"`
	Mode   string      `json:"mode,omitempty"`
	Fill   string      `json:"fill,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	Values []float64   `json:"values,omitempty"`
	Marker *Marker     `json:"marker,omitempty"`
}

type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

type Axis struct {
	Title string `json:"title"`
}

type Layout struct {
	Title string `json:"title"`
	XAxis Axis   `json:"xaxis"`
	YAxis Axis   `json:"yaxis"`
}

// Result is the chart payload returned to the client: series plus a layout
// descriptor.
type Result struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// ValidateRequest enforces the per-kind axis requirements before any file
// read happens. Histogram and box plots work on dependent values only; all
// other kinds need an independent axis as well.
func ValidateRequest(kind Kind, xAxis string, yAxes []string) error {
	switch kind {
	case KindScatter, KindBar, KindLine, KindPie, KindArea:
		if xAxis == "" || len(yAxes) == 0 {
			return fmt.Errorf("%w: x-axis and at least one y-axis are required for %s plots", ErrInvalidRequest, kind)
		}
	case KindHeatmap:
		if xAxis == "" || len(yAxes) < 1 {
			return fmt.Errorf("%w: x-axis and at least one y-axis are required for heatmap", ErrInvalidRequest)
		}
	case KindHistogram, KindBox:
		if len(yAxes) == 0 {
			return fmt.Errorf("%w: at least one y-axis is required for %s plots", ErrInvalidRequest, kind)
		}
	default:
		return fmt.Errorf("%w: unsupported plot type %q", ErrInvalidRequest, string(kind))
	}
	return nil
}

// Build streams every row once and shapes the payload for the given kind.
// Raw dependent-axis values that do not parse as numbers count as 0; a row
// missing a requested column contributes the zero value as well. A file
// with no data rows yields ErrNoData.
func Build(r *csvtable.Reader, kind Kind, xAxis string, yAxes []string) (*Result, error) {
	if err := ValidateRequest(kind, xAxis, yAxes); err != nil {
		return nil, err
	}

	var xValues []string
	yValues := make(map[string][]float64, len(yAxes))
	for _, y := range yAxes {
		yValues[y] = []float64{}
	}

	rows := 0
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows++

		if xAxis != "" {
			xValues = append(xValues, row[xAxis])
		}
		for _, y := range yAxes {
			yValues[y] = append(yValues[y], coerceNumber(row[y]))
		}
	}
	if rows == 0 {
		return nil, ErrNoData
	}

	result := &Result{
		Data:   shapeTraces(kind, xValues, yAxes, yValues),
		Layout: buildLayout(kind, xAxis, yAxes),
	}
	if len(result.Data) == 0 {
		return nil, ErrNoData
	}
	return result, nil
}

func shapeTraces(kind Kind, xValues []string, yAxes []string, yValues map[string][]float64) []Trace {
	var data []Trace

	switch kind {
	case KindScatter, KindLine:
		mode := "markers"
		if kind == KindLine {
			mode = "lines+markers"
		}
		for _, y := range yAxes {
			data = append(data, Trace{
				Type: string(kind),
				Name: y,
				X:    xValues,
				Y:    yValues[y],
				Mode: mode,
			})
		}

	case KindBar:
		for i, y := range yAxes {
			data = append(data, Trace{
				Type:   "bar",
				Name:   y,
				X:      xValues,
				Y:      yValues[y],
				Marker: &Marker{Color: seriesColor(y, i)},
			})
		}

	case KindPie:
		values := make([]float64, len(xValues))
		if len(yAxes) > 0 {
			copy(values, yValues[yAxes[0]])
		} else {
			// No dependent column: each slice counts for one.
			for i := range values {
				values[i] = 1
			}
		}
		colors := make([]string, len(xValues))
		for i, label := range xValues {
			colors[i] = seriesColor(label, i)
		}
		data = append(data, Trace{
			Type:   "pie",
			Labels: xValues,
			Values: values,
			Marker: &Marker{Colors: colors},
		})

	case KindHistogram:
		for i, y := range yAxes {
			data = append(data, Trace{
				Type:   "histogram",
				Name:   y,
				X:      yValues[y],
				Marker: &Marker{Color: seriesColor(y, i)},
			})
		}

	case KindHeatmap:
		// Only the first dependent column feeds the grid; extra columns
		// are accepted but ignored. Known restriction.
		first := yAxes[0]
		data = append(data, Trace{
			Type: "heatmap",
			Z:    [][]float64{yValues[first]},
			X:    xValues,
			Y:    []string{first},
		})

	case KindBox:
		for _, y := range yAxes {
			data = append(data, Trace{
				Type: "box",
				Name: y,
				Y:    yValues[y],
			})
		}

	case KindArea:
		for _, y := range yAxes {
			data = append(data, Trace{
				Type: "scatter",
				Fill: "tozeroy",
				Name: y,
				X:    xValues,
				Y:    yValues[y],
			})
		}
	}

	return data
}

func buildLayout(kind Kind, xAxis string, yAxes []string) Layout {
	title := string(kind)
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	return Layout{
		Title: title + " Plot",
		XAxis: Axis{Title: xAxis},
		YAxis: Axis{Title: strings.Join(yAxes, ", ")},
	}
}

func coerceNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	// ParseFloat accepts NaN and Inf spellings, but neither survives JSON
	// encoding; they count as non-numeric like any other unparseable cell.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// seriesColor derives a stable translucent RGB color from the series name
// and index, so identical requests produce identical payloads.
func seriesColor(name string, index int) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d", name, index)
	sum := h.Sum32()
	r := (sum >> 16) & 0xff
	g := (sum >> 8) & 0xff
	b := sum & 0xff
	return fmt.Sprintf("rgba(%d, %d, %d, 0.7)", r, g, b)
}

// Package chart computes the decorative parameter-impact curves shown next to
// an answer and lays them out for an SVG viewport.
package chart

import (
	"fmt"
	"math"
	"strings"
)

const (
	// Samples is the number of points per series.
	Samples = 100
	// XMax is the right end of the x axis; the axis starts at 0.
	XMax = 2.0
	// TokenScale normalises max_tokens so the default (150) draws a unit cosine.
	TokenScale = 150.0

	Title  = "Impact of Control Parameters on Response Characteristics"
	XLabel = "Control Parameter (Range: 0 - 2)"
	YLabel = "Response Intensity"
)

// Point is one sample of a series.
type Point struct {
	X, Y float64
}

// Series is one labelled curve.
type Series struct {
	Label  string
	Color  string
	Points []Point
}

// Impact returns the three curves for the given controls:
// sin(x)*temperature, cos(x)*maxTokens/TokenScale and sin(x)*topP.
func Impact(temperature float64, maxTokens int, topP float64) []Series {
	temp := Series{Label: "Temperature Impact", Color: "blue"}
	tokens := Series{Label: "Max Tokens Impact", Color: "green"}
	diversity := Series{Label: "Top-p Impact", Color: "red"}

	for i := 0; i < Samples; i++ {
		x := XMax * float64(i) / float64(Samples-1)
		temp.Points = append(temp.Points, Point{X: x, Y: math.Sin(x) * temperature})
		tokens.Points = append(tokens.Points, Point{X: x, Y: math.Cos(x) * float64(maxTokens) / TokenScale})
		diversity.Points = append(diversity.Points, Point{X: x, Y: math.Sin(x) * topP})
	}

	return []Series{temp, tokens, diversity}
}

// Bounds returns the y range covering every series, widened to include 0.
// A flat range is padded so the viewport never collapses.
func Bounds(series []Series) (yMin, yMax float64) {
	for _, s := range series {
		for _, p := range s.Points {
			yMin = math.Min(yMin, p.Y)
			yMax = math.Max(yMax, p.Y)
		}
	}
	if yMax-yMin < 1e-9 {
		yMin, yMax = yMin-1, yMax+1
	}
	return yMin, yMax
}

// Viewport maps chart coordinates onto an SVG canvas of Width x Height.
type Viewport struct {
	Width, Height float64
	YMin, YMax    float64
}

// NewViewport builds a viewport that fits series.
func NewViewport(series []Series, width, height float64) Viewport {
	yMin, yMax := Bounds(series)
	return Viewport{Width: width, Height: height, YMin: yMin, YMax: yMax}
}

// Polyline renders s as an SVG points attribute ("x,y x,y ...").
// SVG y grows downwards, so larger values map to smaller y.
func (v Viewport) Polyline(s Series) string {
	var b strings.Builder
	for i, p := range s.Points {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", v.x(p.X), v.y(p.Y))
	}
	return b.String()
}

// ZeroY is the canvas y of the horizontal axis.
func (v Viewport) ZeroY() float64 {
	return v.y(0)
}

func (v Viewport) x(x float64) float64 {
	return x / XMax * v.Width
}

func (v Viewport) y(y float64) float64 {
	return v.Height - (y-v.YMin)/(v.YMax-v.YMin)*v.Height
}

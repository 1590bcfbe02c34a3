// Package report condenses a dataset of trending records into the figures
// the pipeline shows: a star/fork relationship, three distributions and
// the frequency of each language.
package report

import (
	"errors"
	"math"
	"trending-etl/lib/trending"
)

var ErrEmptyDataset = errors.New("report: dataset is empty")

// bin counts of the three distributions
const (
	StarBins      = 20
	ForkBins      = 20
	TodayStarBins = 2
)

type Point struct {
	Star int
	Fork int
}

// Bin counts the values in [Low, High), the last bin of a histogram also
// includes High.
type Bin struct {
	Low   float64
	High  float64
	Count int
}

type Histogram struct {
	Field string
	Bins  []Bin
}

func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

type LanguageCount struct {
	Language string
	Count    int
}

type Summary struct {
	Rows     int
	StarFork []Point
	// Pearson coefficient of star and fork, NaN when either has no variance.
	Correlation float64
	Stars       Histogram
	Forks       Histogram
	TodayStars  Histogram
	// ordered by the first appearance of each language in the dataset
	Languages []LanguageCount
}

// NewHistogram splits [min, max] of the values into `bins` equal-width bins.
// When every value is the same the range is widened by half a unit on
// each side.
func NewHistogram(field string, values []int, bins int) Histogram {
	h := Histogram{Field: field}
	if len(values) == 0 || bins <= 0 {
		return h
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	low, high := float64(lo), float64(hi)
	if lo == hi {
		low -= 0.5
		high += 0.5
	}
	width := (high - low) / float64(bins)

	h.Bins = make([]Bin, bins)
	for i := range h.Bins {
		h.Bins[i].Low = low + float64(i)*width
		h.Bins[i].High = low + float64(i+1)*width
	}
	h.Bins[bins-1].High = high

	for _, v := range values {
		i := int((float64(v) - low) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Bins[i].Count++
	}
	return h
}

// Pearson returns the correlation coefficient of two equal length series.
func Pearson(xs, ys []int) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return math.NaN()
	}

	var meanX, meanY float64
	for i := range xs {
		meanX += float64(xs[i])
		meanY += float64(ys[i])
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := range xs {
		dx := float64(xs[i]) - meanX
		dy := float64(ys[i]) - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

func LanguageFrequency(languages []string) []LanguageCount {
	index := map[string]int{}
	var out []LanguageCount
	for _, lang := range languages {
		i, seen := index[lang]
		if !seen {
			index[lang] = len(out)
			out = append(out, LanguageCount{Language: lang, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// Summarize is deterministic, the same dataset always yields the same
// summary.
func Summarize(ds trending.Dataset) (Summary, error) {
	if len(ds) == 0 {
		return Summary{}, ErrEmptyDataset
	}

	points := make([]Point, len(ds))
	for i, r := range ds {
		points[i] = Point{Star: r.Star, Fork: r.Fork}
	}

	stars := ds.Stars()
	forks := ds.Forks()
	return Summary{
		Rows:        len(ds),
		StarFork:    points,
		Correlation: Pearson(stars, forks),
		Stars:       NewHistogram("star", stars, StarBins),
		Forks:       NewHistogram("fork", forks, ForkBins),
		TodayStars:  NewHistogram("todayStar", ds.TodayStars(), TodayStarBins),
		Languages:   LanguageFrequency(ds.Languages()),
	}, nil
}

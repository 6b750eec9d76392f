// Package heatmap accumulates revenue into a weekday by time-of-day grid.
package heatmap

import (
	"time"

	"github.com/kosarica/grooming-service/internal/types"
)

// Block is a time-of-day bucket
type Block string

const (
	Morning   Block = "morning"
	Midday    Block = "midday"
	Afternoon Block = "afternoon"
	Late      Block = "late"
)

// Blocks lists the buckets in display order
var Blocks = []Block{Morning, Midday, Afternoon, Late}

// Day is one weekday row of the grid
type Day struct {
	Weekday   string  `json:"day"`
	Morning   float64 `json:"morning"`
	Midday    float64 `json:"midday"`
	Afternoon float64 `json:"afternoon"`
	Late      float64 `json:"late"`
	Total     float64 `json:"total"`
}

// Value returns the amount accumulated in block b
func (d Day) Value(b Block) float64 {
	switch b {
	case Midday:
		return d.Midday
	case Afternoon:
		return d.Afternoon
	case Late:
		return d.Late
	default:
		return d.Morning
	}
}

func (d *Day) add(b Block, amount float64) {
	switch b {
	case Midday:
		d.Midday += amount
	case Afternoon:
		d.Afternoon += amount
	case Late:
		d.Late += amount
	default:
		d.Morning += amount
	}
	d.Total += amount
}

// Heatmap is indexed by time.Weekday, Sunday first
type Heatmap [7]Day

// BlockOf maps an hour to its bucket. Hours before 9 fall into the morning.
func BlockOf(hour int) Block {
	switch {
	case hour >= 18:
		return Late
	case hour >= 15:
		return Afternoon
	case hour >= 12:
		return Midday
	default:
		return Morning
	}
}

// Build accumulates every transaction with a valid date into its weekday and
// block. The sum of day totals equals the sum of those transaction amounts.
func Build(transactions []types.Transaction) Heatmap {
	var h Heatmap
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		h[wd].Weekday = wd.String()
	}

	for _, tx := range transactions {
		if !tx.HasValidDate() {
			continue
		}
		h[tx.CreatedAt.Weekday()].add(BlockOf(tx.CreatedAt.Hour()), tx.TotalAmount)
	}
	return h
}

// Total sums every day total
func (h Heatmap) Total() float64 {
	var sum float64
	for _, d := range h {
		sum += d.Total
	}
	return sum
}

// Peak is the busiest cell of the grid
type Peak struct {
	Weekday string  `json:"day"`
	Block   Block   `json:"block"`
	Amount  float64 `json:"amount"`
}

// Busiest returns the cell with the highest amount. Ties keep the earliest
// weekday and block. ok is false when the grid is empty.
func (h Heatmap) Busiest() (p Peak, ok bool) {
	for _, d := range h {
		for _, b := range Blocks {
			if v := d.Value(b); v > p.Amount {
				p = Peak{Weekday: d.Weekday, Block: b, Amount: v}
				ok = true
			}
		}
	}
	return p, ok
}

// Quietest returns the weekday with the lowest total among days that had any
// revenue.
func (h Heatmap) Quietest() (string, bool) {
	var (
		name   string
		lowest float64
		found  bool
	)
	for _, d := range h {
		if d.Total <= 0 {
			continue
		}
		if !found || d.Total < lowest {
			name, lowest, found = d.Weekday, d.Total, true
		}
	}
	return name, found
}

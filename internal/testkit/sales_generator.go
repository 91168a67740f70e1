// Package testkit generates synthetic tabular datasets for demos and tests.
package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// SalesConfig configures the synthetic sales data generator
type SalesConfig struct {
	Days        int       `json:"days"`
	Regions     []string  `json:"regions"`
	BaseSales   float64   `json:"base_sales"`
	DailyTrend  float64   `json:"daily_trend"`
	WeekendLift float64   `json:"weekend_lift"`
	Noise       float64   `json:"noise"`
	MissingRate float64   `json:"missing_rate"`
	StartDate   time.Time `json:"start_date"`
	Seed        int64     `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for a demo dataset
func DefaultSalesConfig() SalesConfig {
	return SalesConfig{
		Days:        120,
		Regions:     []string{"north", "south", "east", "west"},
		BaseSales:   250.0,
		DailyTrend:  1.8,
		WeekendLift: 40.0,
		Noise:       12.0,
		MissingRate: 0.02,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:        42,
	}
}

// SalesGenerator produces a daily sales table with a linear trend, weekend
// seasonality and correlated spend and visitor columns. Output is
// deterministic for a given seed.
type SalesGenerator struct {
	config SalesConfig
	rng    *rand.Rand
}

// NewSalesGenerator creates a generator for the given config
func NewSalesGenerator(config SalesConfig) *SalesGenerator {
	if config.Days <= 0 {
		config.Days = DefaultSalesConfig().Days
	}
	if len(config.Regions) == 0 {
		config.Regions = DefaultSalesConfig().Regions
	}
	if config.StartDate.IsZero() {
		config.StartDate = DefaultSalesConfig().StartDate
	}
	return &SalesGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Headers lists the generated columns in output order
func (g *SalesGenerator) Headers() []string {
	return []string{"date", "region", "sales", "spend", "visitors", "promo"}
}

// Rows generates one record per day per region
func (g *SalesGenerator) Rows() [][]string {
	rows := make([][]string, 0, g.config.Days*len(g.config.Regions))

	for day := 0; day < g.config.Days; day++ {
		date := g.config.StartDate.AddDate(0, 0, day)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday

		for ri, region := range g.config.Regions {
			promo := g.rng.Float64() < 0.15

			sales := g.config.BaseSales +
				g.config.DailyTrend*float64(day) +
				25.0*float64(ri) +
				g.rng.NormFloat64()*g.config.Noise
			if weekend {
				sales += g.config.WeekendLift
			}
			if promo {
				sales *= 1.2
			}
			if sales < 0 {
				sales = 0
			}

			spend := 0.3*sales + g.rng.NormFloat64()*g.config.Noise*0.5
			if spend < 0 {
				spend = 0
			}
			visitors := int(math.Round(sales*3.5 + g.rng.NormFloat64()*20.0))
			if visitors < 0 {
				visitors = 0
			}

			spendCell := fmt.Sprintf("%.2f", spend)
			if g.rng.Float64() < g.config.MissingRate {
				spendCell = ""
			}

			promoCell := "no"
			if promo {
				promoCell = "yes"
			}

			rows = append(rows, []string{
				date.Format("2006-01-02"),
				region,
				fmt.Sprintf("%.2f", sales),
				spendCell,
				strconv.Itoa(visitors),
				promoCell,
			})
		}
	}
	return rows
}

// WriteCSV writes the full dataset, header first
func (g *SalesGenerator) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Headers()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range g.Rows() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

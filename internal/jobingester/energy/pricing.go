package energy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
)

// Pricer supplies electricity prices covering a time window.
type Pricer interface {
	Series(ctx context.Context, from, to time.Time) (PriceSeries, error)
}

// PriceSeries resolves the EUR/kWh rate applicable at a point in time.
type PriceSeries interface {
	RateAt(t time.Time) float64
}

// NewPricer builds the pricer selected by config, or nil when pricing is
// disabled. An unknown mode is a configuration error.
func NewPricer(config configuration.PricingConfig) (Pricer, error) {
	switch config.Mode {
	case "":
		return nil, nil
	case "flat":
		return &FlatPricer{RateEURPerKWh: config.FlatRateEURPerKWh}, nil
	case "market":
		return NewMarketPricer(config.Market), nil
	default:
		return nil, errors.Errorf("unknown pricing mode %q", config.Mode)
	}
}

// FlatPricer prices every kWh at the same configured rate.
type FlatPricer struct {
	RateEURPerKWh float64
}

func (p *FlatPricer) Series(ctx context.Context, from, to time.Time) (PriceSeries, error) {
	return flatSeries{rate: p.RateEURPerKWh}, nil
}

type flatSeries struct {
	rate float64
}

func (s flatSeries) RateAt(t time.Time) float64 {
	return s.rate
}

// MarketPricer fetches day-ahead market prices from the SMARD feed. The feed
// publishes an index of block timestamps plus one series file per block, with
// rows of [epoch milliseconds, EUR/MWh].
type MarketPricer struct {
	config configuration.MarketPricingConfig
	client *http.Client
}

func NewMarketPricer(config configuration.MarketPricingConfig) *MarketPricer {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &MarketPricer{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

type marketIndex struct {
	Timestamps []int64 `json:"timestamps"`
}

type marketBlock struct {
	Series [][]*float64 `json:"series"`
}

func (p *MarketPricer) Series(ctx context.Context, from, to time.Time) (PriceSeries, error) {
	index, err := p.fetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	blocks := coveringBlocks(index.Timestamps, from.UnixMilli(), to.UnixMilli())
	if len(blocks) == 0 {
		return nil, errors.Errorf("no market price blocks cover %s to %s", from, to)
	}

	series := &marketSeries{}
	for _, block := range blocks {
		points, err := p.fetchBlock(ctx, block)
		if err != nil {
			return nil, err
		}
		series.points = append(series.points, points...)
	}
	if len(series.points) == 0 {
		return nil, errors.New("market price blocks contained no prices")
	}
	slices.SortFunc(series.points, func(a, b pricePoint) bool { return a.atMillis < b.atMillis })
	return series, nil
}

func (p *MarketPricer) fetchIndex(ctx context.Context) (*marketIndex, error) {
	url := fmt.Sprintf("%s/chart_data/%s/%s/index_%s.json",
		p.config.BaseURL, p.config.FilterID, p.config.Region, p.config.Resolution)
	var index marketIndex
	if err := p.getJSON(ctx, url, &index); err != nil {
		return nil, errors.WithMessage(err, "fetching market price index")
	}
	if len(index.Timestamps) == 0 {
		return nil, errors.New("market price index is empty")
	}
	return &index, nil
}

func (p *MarketPricer) fetchBlock(ctx context.Context, blockTimestamp int64) ([]pricePoint, error) {
	url := fmt.Sprintf("%s/chart_data/%s/%s/%s_%s_%s_%d.json",
		p.config.BaseURL, p.config.FilterID, p.config.Region,
		p.config.FilterID, p.config.Region, p.config.Resolution, blockTimestamp)
	var block marketBlock
	if err := p.getJSON(ctx, url, &block); err != nil {
		return nil, errors.WithMessagef(err, "fetching market price block %d", blockTimestamp)
	}
	var points []pricePoint
	for _, row := range block.Series {
		if len(row) < 2 || row[0] == nil || row[1] == nil {
			continue
		}
		points = append(points, pricePoint{
			atMillis: int64(*row[0]),
			// The feed quotes EUR/MWh.
			ratePerKWh: *row[1] / 1000,
		})
	}
	return points, nil
}

func (p *MarketPricer) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// coveringBlocks selects the block timestamps whose span intersects
// [from, to]. A block spans from its timestamp to the next one.
func coveringBlocks(timestamps []int64, from, to int64) []int64 {
	sorted := make([]int64, len(timestamps))
	copy(sorted, timestamps)
	slices.Sort(sorted)

	var blocks []int64
	for i, ts := range sorted {
		end := to + 1
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		if end > from && ts <= to {
			blocks = append(blocks, ts)
		}
	}
	return blocks
}

type pricePoint struct {
	atMillis   int64
	ratePerKWh float64
}

type marketSeries struct {
	points []pricePoint
}

// RateAt returns the rate of the latest point at or before t, or the first
// known rate for instants before the series starts.
func (s *marketSeries) RateAt(t time.Time) float64 {
	at := t.UnixMilli()
	rate := s.points[0].ratePerKWh
	for _, point := range s.points {
		if point.atMillis > at {
			break
		}
		rate = point.ratePerKWh
	}
	return rate
}

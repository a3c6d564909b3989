package pipeline

import (
	"context"

	"github.com/quantcrew/tradingcrew/internal/dataflows"
)

// MarketDataProvider adapts the historical market client to the coordinator's
// MarketContextProvider interface.
type MarketDataProvider struct {
	client *dataflows.HistoricalMarketClient
	days   int
}

func NewMarketDataProvider(client *dataflows.HistoricalMarketClient, days int) *MarketDataProvider {
	return &MarketDataProvider{client: client, days: days}
}

func (p *MarketDataProvider) MarketContext(ctx context.Context) (*MarketContext, error) {
	points, err := p.client.GetVolatility(ctx, p.days)
	if err != nil {
		return nil, err
	}
	global, err := p.client.GetGlobalSnapshot(ctx, p.days)
	if err != nil {
		return nil, err
	}
	return &MarketContext{
		VolatilityText: dataflows.FormatVolatility(points, p.days),
		GlobalText:     global,
	}, nil
}

// ForecastDataProvider adapts the forecast client to the coordinator's
// ForecastProvider interface.
type ForecastDataProvider struct {
	client *dataflows.ForecastClient
}

func NewForecastDataProvider(client *dataflows.ForecastClient) *ForecastDataProvider {
	return &ForecastDataProvider{client: client}
}

func (p *ForecastDataProvider) Forecast(ctx context.Context, symbols []string) (dataflows.ForecastTable, error) {
	return p.client.GetForecast(ctx, symbols)
}

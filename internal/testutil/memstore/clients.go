package memstore

import (
	"context"
	"time"

	"github.com/wonny/krxflow/internal/domain/market"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/domain/price"
)

// KRX fetcher.KRXClient 고정 응답
type KRX struct {
	NetBuy      map[netbuy.InvestorClass][]netbuy.Record
	NetBuyErr   map[netbuy.InvestorClass]error
	Prices      map[price.Market][]price.DailyPrice
	PricesErr   map[price.Market]error
	TradingDays []time.Time
	DaysErr     error
	DaysFrom    time.Time
	DaysTo      time.Time
}

func (k *KRX) FetchNetBuy(ctx context.Context, date time.Time, class netbuy.InvestorClass) ([]netbuy.Record, error) {
	if err := k.NetBuyErr[class]; err != nil {
		return nil, err
	}
	out := make([]netbuy.Record, 0, len(k.NetBuy[class]))
	for _, r := range k.NetBuy[class] {
		r.Date = date
		r.Class = class
		out = append(out, r)
	}
	return out, nil
}

func (k *KRX) FetchDailyPrices(ctx context.Context, date time.Time, mkt price.Market) ([]price.DailyPrice, error) {
	if err := k.PricesErr[mkt]; err != nil {
		return nil, err
	}
	out := make([]price.DailyPrice, 0, len(k.Prices[mkt]))
	for _, p := range k.Prices[mkt] {
		p.Date = date
		p.Market = mkt
		out = append(out, p)
	}
	return out, nil
}

func (k *KRX) FetchTradingDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	k.DaysFrom, k.DaysTo = from, to
	if k.DaysErr != nil {
		return nil, k.DaysErr
	}
	return k.TradingDays, nil
}

// Naver fetcher.NaverClient 고정 응답
type Naver struct {
	Summary    *market.Summary
	SummaryErr error
	Upper      []market.FeaturedStock
	UpperErr   error
}

func (n *Naver) FetchMarketSummary(ctx context.Context) (*market.Summary, error) {
	if n.SummaryErr != nil {
		return nil, n.SummaryErr
	}
	s := *n.Summary
	return &s, nil
}

func (n *Naver) FetchUpperLimit(ctx context.Context) ([]market.FeaturedStock, error) {
	if n.UpperErr != nil {
		return nil, n.UpperErr
	}
	return append([]market.FeaturedStock(nil), n.Upper...), nil
}

package krx

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/price"
)

// 전종목 시세 CSV 컬럼
const (
	colClose      = "종가"
	colChange     = "대비"
	colChangeRate = "등락률"
	colOpen       = "시가"
	colHigh       = "고가"
	colLow        = "저가"
	colVolume     = "거래량"
	colAmount     = "거래대금"
	colMarketCap  = "시가총액"
	colShares     = "상장주식수"
)

// FetchDailyPrices 시장별 전종목 시세 (MDCSTAT01501)
func (c *Client) FetchDailyPrices(ctx context.Context, date time.Time, mkt price.Market) ([]price.DailyPrice, error) {
	if !mkt.IsValid() {
		return nil, fmt.Errorf("unsupported market %q", mkt)
	}

	day := calendar.FormatDate(date)
	form := url.Values{
		"mktId":       {mkt.KRXID()},
		"trdDd":       {day},
		"share":       {"1"},
		"money":       {"1"},
		"csvxls_isNo": {"false"},
		"name":        {"fileDown"},
		"url":         {"dbms/MDC/STAT/standard/MDCSTAT01501"},
	}

	t, err := c.download(ctx, priceHeaders, form)
	if err != nil {
		return nil, fmt.Errorf("daily price %s %s: %w", day, mkt, err)
	}
	if err := t.require(colStockCode, colStockName, colClose, colChange, colChangeRate,
		colOpen, colHigh, colLow, colVolume, colAmount, colMarketCap, colShares); err != nil {
		return nil, fmt.Errorf("daily price %s %s: %w", day, mkt, err)
	}

	prices := make([]price.DailyPrice, 0, len(t.rows))
	for _, row := range t.rows {
		code := t.str(row, colStockCode)
		if code == "" {
			continue
		}
		prices = append(prices, price.DailyPrice{
			Date:       date,
			StockCode:  code,
			StockName:  t.str(row, colStockName),
			Market:     mkt,
			Close:      t.integer(row, colClose),
			Change:     t.integer(row, colChange),
			ChangeRate: t.decimal(row, colChangeRate),
			Open:       t.integer(row, colOpen),
			High:       t.integer(row, colHigh),
			Low:        t.integer(row, colLow),
			Volume:     t.integer(row, colVolume),
			Amount:     t.integer(row, colAmount),
			MarketCap:  t.integer(row, colMarketCap),
			Shares:     t.integer(row, colShares),
		})
	}
	t.warnInvalid("daily_price " + day + " " + string(mkt))

	log.Debug().
		Str("date", day).
		Str("market", string(mkt)).
		Int("count", len(prices)).
		Msg("Fetched daily prices from KRX")

	return prices, nil
}

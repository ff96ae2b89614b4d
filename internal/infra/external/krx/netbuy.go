package krx

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/netbuy"
)

// 투자자별 순매수 상위종목 CSV 컬럼
const (
	colStockCode = "종목코드"
	colStockName = "종목명"
	colSellQty   = "거래량_매도"
	colBuyQty    = "거래량_매수"
	colNetQty    = "거래량_순매수"
	colSellAmt   = "거래대금_매도"
	colBuyAmt    = "거래대금_매수"
	colNetAmt    = "거래대금_순매수"
)

// FetchNetBuy 투자자별 전종목 순매수 (MDCSTAT02401, mktId=ALL)
func (c *Client) FetchNetBuy(ctx context.Context, date time.Time, class netbuy.InvestorClass) ([]netbuy.Record, error) {
	day := calendar.FormatDate(date)
	form := url.Values{
		"locale":      {"ko_KR"},
		"mktId":       {"ALL"},
		"strtDd":      {day},
		"endDd":       {day},
		"invstTpCd":   {string(class)},
		"csvxls_isNo": {"false"},
		"name":        {"fileDown"},
		"share":       {"1"},
		"money":       {"1"},
		"url":         {"dbms/MDC/STAT/standard/MDCSTAT02401"},
	}

	t, err := c.download(ctx, netBuyHeaders, form)
	if err != nil {
		return nil, fmt.Errorf("net buy %s %s: %w", day, class, err)
	}
	if err := t.require(colStockCode, colStockName, colSellQty, colBuyQty, colNetQty, colSellAmt, colBuyAmt, colNetAmt); err != nil {
		return nil, fmt.Errorf("net buy %s %s: %w", day, class, err)
	}

	records := make([]netbuy.Record, 0, len(t.rows))
	for _, row := range t.rows {
		code := t.str(row, colStockCode)
		if code == "" {
			continue
		}
		records = append(records, netbuy.Record{
			Date:      date,
			Class:     class,
			StockCode: code,
			StockName: t.str(row, colStockName),
			SellQty:   t.integer(row, colSellQty),
			BuyQty:    t.integer(row, colBuyQty),
			NetQty:    t.integer(row, colNetQty),
			SellAmt:   t.integer(row, colSellAmt),
			BuyAmt:    t.integer(row, colBuyAmt),
			NetAmt:    t.integer(row, colNetAmt),
		})
	}
	t.warnInvalid("net_buy " + day + " " + string(class))

	log.Debug().
		Str("date", day).
		Str("class", string(class)).
		Int("count", len(records)).
		Msg("Fetched net buy from KRX")

	return records, nil
}

package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndexQuote 지수 현재가/전일대비/등락률
type IndexQuote struct {
	Value  decimal.Decimal
	Change decimal.Decimal
	Rate   decimal.Decimal
}

// Summary 시장 요약 (market.market_summary)
type Summary struct {
	Date     time.Time
	KOSPI    IndexQuote
	KOSDAQ   IndexQuote
	KOSPI200 IndexQuote
}

// FeaturedStock 상한가 종목 (market.featured_stock)
type FeaturedStock struct {
	Date       time.Time
	Seq        int
	StockName  string
	Price      int64
	Change     int64
	ChangeRate decimal.Decimal
}

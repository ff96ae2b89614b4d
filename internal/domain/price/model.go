package price

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market represents a KRX board
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// Markets 수집 순서
var Markets = []Market{MarketKOSPI, MarketKOSDAQ}

// IsValid checks if market is valid
func (m Market) IsValid() bool {
	switch m {
	case MarketKOSPI, MarketKOSDAQ:
		return true
	default:
		return false
	}
}

// KRXID returns the KRX mktId parameter
func (m Market) KRXID() string {
	switch m {
	case MarketKOSPI:
		return "STK"
	case MarketKOSDAQ:
		return "KSQ"
	default:
		return ""
	}
}

// ExportPrefix 엑셀 파일명 접두사
func (m Market) ExportPrefix() string {
	switch m {
	case MarketKOSDAQ:
		return "kosdaq_stock_data"
	default:
		return "kospi_stock_data"
	}
}

// DailyPrice 일별 시세 (market.daily_price)
type DailyPrice struct {
	Date       time.Time
	StockCode  string
	StockName  string
	Market     Market
	Close      int64
	Change     int64           // 전일대비
	ChangeRate decimal.Decimal // 등락률 (%)
	Open       int64
	High       int64
	Low        int64
	Volume     int64
	Amount     int64 // 거래대금
	MarketCap  int64
	Shares     int64 // 상장주식수
}

// TechnicalIndex 기술 지표 (analysis.technical_index)
type TechnicalIndex struct {
	Date      time.Time
	StockCode string
	StockName string
	Close     int64
	RSI       decimal.Decimal
	OBV       int64
}

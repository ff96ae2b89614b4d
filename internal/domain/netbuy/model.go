package netbuy

import "time"

// InvestorClass KRX 투자자 구분 코드
type InvestorClass string

const (
	Institution InvestorClass = "7050" // 기관합계
	Foreigner   InvestorClass = "9000" // 외국인
)

// InvestorClasses 수집 대상 투자자 (수집 순서)
var InvestorClasses = []InvestorClass{Institution, Foreigner}

// Label 한글 표기
func (c InvestorClass) Label() string {
	switch c {
	case Institution:
		return "기관"
	case Foreigner:
		return "외국인"
	default:
		return string(c)
	}
}

// Record 투자자별 일별 순매수 (market.net_buy_record)
// (date, class, stock) 당 1건. 순위는 적재 후 DENSE_RANK 로 채워진다.
type Record struct {
	Date      time.Time
	Class     InvestorClass
	StockCode string
	StockName string
	SellQty   int64
	BuyQty    int64
	NetQty    int64
	SellAmt   int64
	BuyAmt    int64
	NetAmt    int64
	RankQty   *int
	RankAmt   *int
}

// Qualifies reports whether either rank is below cutoff
func (r Record) Qualifies(cutoff int) bool {
	return (r.RankAmt != nil && *r.RankAmt < cutoff) ||
		(r.RankQty != nil && *r.RankQty < cutoff)
}

// RankAmounts 기준일 종목별 거래대금 순위 합 (투자자별)
type RankAmounts struct {
	Institution int
	Foreigner   int
}

package indicator

import (
	"github.com/shopspring/decimal"
)

// Period RSI 기간 (변화량 14개, 종가 15개)
const Period = 14

var hundred = decimal.NewFromInt(100)

// RSI = 100 - 100 / (1 + RS), RS = 평균 상승폭 / 평균 하락폭
// closes 는 오래된 순. 상승/하락이 모두 0 이면 정의되지 않아 false.
func RSI(closes []int64) (decimal.Decimal, bool) {
	if len(closes) < 2 {
		return decimal.Zero, false
	}

	var gains, losses int64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	switch {
	case gains == 0 && losses == 0:
		return decimal.Zero, false
	case losses == 0:
		return hundred, true
	}

	// 평균의 분모(기간)는 약분된다
	rs := decimal.NewFromInt(gains).Div(decimal.NewFromInt(losses))
	rsi := hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs)))
	return rsi.Round(4), true
}

// OBV 첫날 0에서 시작, 상승 마감 +거래량, 하락 마감 -거래량
func OBV(closes, volumes []int64) int64 {
	var obv int64
	for i := 1; i < len(closes) && i < len(volumes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volumes[i]
		case closes[i] < closes[i-1]:
			obv -= volumes[i]
		}
	}
	return obv
}

package indicator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/price"
	calendarsvc "github.com/wonny/krxflow/internal/service/calendar"
	"github.com/wonny/krxflow/internal/testutil/memstore"
)

func TestRSI(t *testing.T) {
	t.Run("gains and losses", func(t *testing.T) {
		// +2 x7, -1 x7 → RS 2 → 66.6667
		closes := []int64{100}
		for i := 0; i < 7; i++ {
			closes = append(closes, closes[len(closes)-1]+2, closes[len(closes)-1]+1)
		}
		require.Len(t, closes, 15)

		rsi, ok := RSI(closes)
		require.True(t, ok)
		assert.Equal(t, "66.6667", rsi.String())
	})

	t.Run("no losses", func(t *testing.T) {
		rsi, ok := RSI([]int64{100, 101, 101, 105})
		require.True(t, ok)
		assert.Equal(t, "100", rsi.String())
	})

	t.Run("no gains", func(t *testing.T) {
		rsi, ok := RSI([]int64{100, 90, 80})
		require.True(t, ok)
		assert.True(t, rsi.IsZero())
	})

	t.Run("flat is undefined", func(t *testing.T) {
		_, ok := RSI([]int64{100, 100, 100})
		assert.False(t, ok)
	})
}

func TestOBV(t *testing.T) {
	closes := []int64{100, 110, 105, 105, 120}
	volumes := []int64{999, 10, 20, 30, 40}

	// 0 + 10 - 20 + 0 + 40
	assert.Equal(t, int64(30), OBV(closes, volumes))
	assert.Zero(t, OBV([]int64{100}, []int64{5}))
}

func tradingDays(n int) []time.Time {
	days := make([]time.Time, 0, n)
	for d := memstore.Date("20250102"); len(days) < n; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func TestService_Run(t *testing.T) {
	days := tradingDays(20)
	ref := days[len(days)-1]
	window := days[len(days)-15:]

	var prices []price.DailyPrice
	for i, d := range window {
		// 상승 종목: 매일 +1
		prices = append(prices, price.DailyPrice{
			Date: d, StockCode: "005930", StockName: "삼성전자", Close: int64(100 + i), Volume: 10,
		})
		// 보합 종목: RSI 정의 불가
		prices = append(prices, price.DailyPrice{
			Date: d, StockCode: "035720", StockName: "카카오", Close: 500, Volume: 10,
		})
		// 하루 빠진 종목
		if i != 3 {
			prices = append(prices, price.DailyPrice{
				Date: d, StockCode: "000660", StockName: "SK하이닉스", Close: int64(200 - i), Volume: 5,
			})
		}
	}
	// 윈도우 밖 데이터는 무시된다
	prices = append(prices, price.DailyPrice{Date: days[0], StockCode: "005930", Close: 1, Volume: 1_000_000})

	store := memstore.NewPrice(prices...)
	svc := NewService(calendarsvc.NewResolver(memstore.NewCalendar(days...)), store, store)

	n, err := svc.Run(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	idx, ok := store.Index(ref, "005930")
	require.True(t, ok)
	assert.Equal(t, "100", idx.RSI.String())
	assert.Equal(t, int64(140), idx.OBV)
	assert.Equal(t, int64(114), idx.Close)
	assert.Equal(t, "삼성전자", idx.StockName)

	_, ok = store.Index(ref, "035720")
	assert.False(t, ok)
	_, ok = store.Index(ref, "000660")
	assert.False(t, ok)

	// upsert 이므로 재실행해도 같은 결과
	n, err = svc.Run(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_Run_InsufficientHistory(t *testing.T) {
	days := tradingDays(10)
	store := memstore.NewPrice()
	svc := NewService(calendarsvc.NewResolver(memstore.NewCalendar(days...)), store, store)

	_, err := svc.Run(context.Background(), days[len(days)-1])
	assert.ErrorIs(t, err, calendar.ErrInsufficientHistory)
}

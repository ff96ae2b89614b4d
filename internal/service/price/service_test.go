package price

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/price"
	"github.com/wonny/krxflow/internal/testutil/memstore"
)

func TestService_Run(t *testing.T) {
	ref := memstore.Date("20250404")
	store := memstore.NewPrice(
		price.DailyPrice{Date: ref, StockCode: "999999", StockName: "stale"},
		price.DailyPrice{Date: memstore.Date("20250403"), StockCode: "005930", StockName: "삼성전자"},
	)
	krx := &memstore.KRX{
		Prices: map[price.Market][]price.DailyPrice{
			price.MarketKOSPI: {
				{StockCode: "005930", StockName: "삼성전자", Close: 70000, ChangeRate: decimal.RequireFromString("1.45")},
			},
			price.MarketKOSDAQ: {
				{StockCode: "035720", StockName: "카카오", Close: 41000},
				{StockCode: "247540", StockName: "에코프로비엠", Close: 90000},
			},
		},
	}
	exporter := memstore.NewExporter()

	n, err := NewService(krx, store, exporter).Run(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	saved := store.Prices(ref)
	require.Len(t, saved, 3)
	assert.Equal(t, "005930", saved[0].StockCode)
	assert.Equal(t, price.MarketKOSPI, saved[0].Market)
	assert.Len(t, store.Prices(memstore.Date("20250403")), 1)

	kospi := exporter.Files["kospi_stock_data_20250404.xlsx"]
	require.Len(t, kospi, 1)
	assert.Equal(t, []any{"005930", "삼성전자", int64(70000), int64(0), 1.45,
		int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), int64(0)}, kospi[0].Rows[0])
	assert.Len(t, exporter.Files["kosdaq_stock_data_20250404.xlsx"][0].Rows, 2)
}

func TestService_Run_ExternalErrorSkipsMarket(t *testing.T) {
	ref := memstore.Date("20250404")
	store := memstore.NewPrice()
	krx := &memstore.KRX{
		Prices: map[price.Market][]price.DailyPrice{
			price.MarketKOSDAQ: {{StockCode: "035720"}},
		},
		PricesErr: map[price.Market]error{
			price.MarketKOSPI: fmt.Errorf("%w: status 500", fetcher.ErrExternalFetch),
		},
	}
	exporter := memstore.NewExporter()

	n, err := NewService(krx, store, exporter).Run(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, exporter.Files, "kospi_stock_data_20250404.xlsx")
}

func TestService_Run_OtherErrorFails(t *testing.T) {
	krx := &memstore.KRX{
		PricesErr: map[price.Market]error{price.MarketKOSPI: errors.New("boom")},
	}

	_, err := NewService(krx, memstore.NewPrice(), memstore.NewExporter()).Run(context.Background(), memstore.Date("20250404"))
	assert.Error(t, err)
}

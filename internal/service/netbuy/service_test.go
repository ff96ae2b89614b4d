package netbuy

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/testutil/memstore"
)

func TestService_Run(t *testing.T) {
	ref := memstore.Date("20250404")
	store := memstore.NewNetBuy(
		netbuy.Record{Date: ref, Class: netbuy.Institution, StockCode: "999999"},
	)
	krx := &memstore.KRX{
		NetBuy: map[netbuy.InvestorClass][]netbuy.Record{
			netbuy.Institution: {
				{StockCode: "005930", NetQty: 100, NetAmt: 7_000_000},
				{StockCode: "000660", NetQty: 300, NetAmt: 5_000_000},
				{StockCode: "035720", NetQty: 100, NetAmt: -1_000},
			},
			netbuy.Foreigner: {
				{StockCode: "005930", NetQty: -50, NetAmt: -3_500_000},
			},
		},
	}

	n, err := NewService(krx, store).Run(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	records := store.Records(ref)
	require.Len(t, records, 4)

	byKey := make(map[string]netbuy.Record)
	for _, r := range records {
		byKey[string(r.Class)+"/"+r.StockCode] = r
	}

	samsung := byKey["7050/005930"]
	require.NotNil(t, samsung.RankQty)
	assert.Equal(t, 2, *samsung.RankQty) // 300 > 100 = 100 (dense)
	assert.Equal(t, 1, *samsung.RankAmt)

	kakao := byKey["7050/035720"]
	assert.Equal(t, 2, *kakao.RankQty)
	assert.Equal(t, 3, *kakao.RankAmt)

	assert.Equal(t, 1, *byKey["9000/005930"].RankQty)
	assert.NotContains(t, byKey, "7050/999999")
}

func TestService_Run_ExternalErrorSkipsClass(t *testing.T) {
	ref := memstore.Date("20250404")
	store := memstore.NewNetBuy()
	krx := &memstore.KRX{
		NetBuy: map[netbuy.InvestorClass][]netbuy.Record{
			netbuy.Foreigner: {{StockCode: "005930", NetQty: 10}},
		},
		NetBuyErr: map[netbuy.InvestorClass]error{
			netbuy.Institution: fmt.Errorf("otp: %w", fetcher.ErrEmptyPayload),
		},
	}

	n, err := NewService(krx, store).Run(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records := store.Records(ref)
	require.Len(t, records, 1)
	assert.Equal(t, netbuy.Foreigner, records[0].Class)
}

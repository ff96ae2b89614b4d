package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/infra/external/euckr"
	"github.com/wonny/krxflow/internal/pkg/config"
)

const sisePage = `<html><head><meta charset="euc-kr"></head><body>
<span id="KOSPI_now">2,645.08</span><span id="KOSPI_change">12.34<span class="blind">상승</span></span><span id="KOSPI_rate">+0.47%</span>
<span id="KOSDAQ_now">741.20</span><span id="KOSDAQ_change">3.10<span class="blind">하락</span></span><span id="KOSDAQ_rate">0.42%</span>
<span id="KPI200_now">350.55</span><span id="KPI200_change">1.05</span><span id="KPI200_rate">+0.30%</span>
</body></html>`

const upperPage = `<html><body><table class="type_2">
<tr><th>N</th><th>종목명</th><th>현재가</th><th>전일비</th><th>등락률</th></tr>
<tr><td>1</td><td><a href="#">삼성전자</a></td><td>70,000</td><td>상한가 16,100</td><td>+29.87%</td><td>1,000</td></tr>
<tr><td colspan="10" class="blank"></td></tr>
<tr><td>2</td><td>카카오</td><td>52,000</td><td>12,000</td><td>+30.00%</td></tr>
</table></body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(page string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, err := euckr.Encode(page)
			require.NoError(t, err)
			w.Header().Set("Content-Type", "text/html; charset=euc-kr")
			_, _ = w.Write(body)
		}
	}
	mux.HandleFunc("/sise/", serve(sisePage))
	mux.HandleFunc("/sise/sise_upper.naver", serve(upperPage))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMarketSummary(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(config.NaverConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})

	s, err := c.FetchMarketSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2645.08", s.KOSPI.Value.String())
	assert.Equal(t, "12.34", s.KOSPI.Change.String())
	assert.Equal(t, "0.47", s.KOSPI.Rate.String())

	assert.Equal(t, "741.2", s.KOSDAQ.Value.String())
	assert.Equal(t, "-3.1", s.KOSDAQ.Change.String())
	assert.Equal(t, "-0.42", s.KOSDAQ.Rate.String())

	assert.Equal(t, "350.55", s.KOSPI200.Value.String())
}

func TestFetchUpperLimit(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(config.NaverConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})

	stocks, err := c.FetchUpperLimit(context.Background())
	require.NoError(t, err)
	require.Len(t, stocks, 2)

	assert.Equal(t, 1, stocks[0].Seq)
	assert.Equal(t, "삼성전자", stocks[0].StockName)
	assert.Equal(t, int64(70000), stocks[0].Price)
	assert.Equal(t, int64(16100), stocks[0].Change)
	assert.Equal(t, "29.87", stocks[0].ChangeRate.String())

	assert.Equal(t, 2, stocks[1].Seq)
	assert.Equal(t, "카카오", stocks[1].StockName)
}

func TestFetchMarketSummary_MissingElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>점검중</body></html>"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.NaverConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := c.FetchMarketSummary(context.Background())
	assert.ErrorIs(t, err, fetcher.ErrInvalidResponse)
}

func TestFetch_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.NaverConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := c.FetchUpperLimit(context.Background())
	assert.ErrorIs(t, err, fetcher.ErrExternalFetch)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,234", "1234"},
		{"-5.5%", "-5.5"},
		{"+0.47%", "0.47"},
		{"3.10하락", "-3.1"},
		{"하한가 1,200", "-1200"},
		{"", "0"},
		{"N/A", "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDecimal(tt.in).String(), tt.in)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(config.NaverConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	assert.NoError(t, c.HealthCheck(context.Background()))
}

package naver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/market"
	"github.com/wonny/krxflow/internal/infra/external/euckr"
	"github.com/wonny/krxflow/internal/pkg/backoff"
	"github.com/wonny/krxflow/internal/pkg/config"
)

const (
	siseRoot  = "/sise/"
	siseUpper = "/sise/sise_upper.naver"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Client 네이버 금융 시세 페이지 클라이언트 (EUC-KR HTML)
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      backoff.Config
}

var _ fetcher.NaverClient = (*Client)(nil)

// NewClient 클라이언트 생성
func NewClient(cfg config.NaverConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retry:      backoff.DefaultConfig("naver"),
	}
}

// =============================================================================
// Market Summary
// =============================================================================

// FetchMarketSummary 코스피/코스닥/코스피200 지수 요약
func (c *Client) FetchMarketSummary(ctx context.Context) (*market.Summary, error) {
	doc, err := c.document(ctx, siseRoot)
	if err != nil {
		return nil, fmt.Errorf("market summary: %w", err)
	}

	summary := &market.Summary{}
	for _, idx := range []struct {
		id    string
		quote *market.IndexQuote
	}{
		{"KOSPI", &summary.KOSPI},
		{"KOSDAQ", &summary.KOSDAQ},
		{"KPI200", &summary.KOSPI200},
	} {
		now := doc.Find("#" + idx.id + "_now")
		if now.Length() == 0 {
			return nil, fmt.Errorf("market summary: %w: #%s_now not found", fetcher.ErrInvalidResponse, idx.id)
		}
		changeText := doc.Find("#" + idx.id + "_change").Text()

		*idx.quote = market.IndexQuote{
			Value:  parseDecimal(now.Text()),
			Change: parseDecimal(changeText),
			Rate:   parseRate(doc.Find("#"+idx.id+"_rate").Text(), changeText),
		}
	}

	log.Debug().
		Str("kospi", summary.KOSPI.Value.String()).
		Str("kosdaq", summary.KOSDAQ.Value.String()).
		Msg("Fetched market summary from Naver")

	return summary, nil
}

// =============================================================================
// Upper Limit Stocks
// =============================================================================

// FetchUpperLimit 상한가 종목 (table.type_2, 셀 5개 이상인 행)
func (c *Client) FetchUpperLimit(ctx context.Context) ([]market.FeaturedStock, error) {
	doc, err := c.document(ctx, siseUpper)
	if err != nil {
		return nil, fmt.Errorf("upper limit: %w", err)
	}

	var stocks []market.FeaturedStock
	doc.Find("table.type_2 tr").Each(func(i int, s *goquery.Selection) {
		tds := s.Find("td")
		if tds.Length() < 5 {
			return
		}

		name := strings.TrimSpace(tds.Eq(1).Text())
		if name == "" {
			return
		}

		stocks = append(stocks, market.FeaturedStock{
			Seq:        len(stocks) + 1,
			StockName:  name,
			Price:      parseDecimal(tds.Eq(2).Text()).IntPart(),
			Change:     parseDecimal(tds.Eq(3).Text()).IntPart(),
			ChangeRate: parseDecimal(tds.Eq(4).Text()),
		})
	})

	log.Debug().Int("count", len(stocks)).Msg("Fetched upper limit stocks from Naver")

	return stocks, nil
}

// document GET + EUC-KR 디코딩 + goquery 파싱
func (c *Client) document(ctx context.Context, path string) (*goquery.Document, error) {
	var body []byte
	err := backoff.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: %s status %d", fetcher.ErrExternalFetch, path, resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		if backoff.IsNetworkError(err) {
			return nil, fmt.Errorf("%w: %w", fetcher.ErrExternalFetch, err)
		}
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fetcher.ErrEmptyPayload
	}

	text, err := euckr.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode euc-kr: %v", fetcher.ErrInvalidResponse, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", fetcher.ErrInvalidResponse, err)
	}
	return doc, nil
}

var numberPattern = regexp.MustCompile(`[-+]?\d[\d,]*(\.\d+)?`)

// parseDecimal 첫 번째 숫자 추출. '하락'/'하한' 표기는 음수.
func parseDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, "−", "-")
	m := numberPattern.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(m, "+"), ",", ""))
	if err != nil {
		return decimal.Zero
	}
	if d.IsPositive() && (strings.Contains(s, "하락") || strings.Contains(s, "하한")) {
		d = d.Neg()
	}
	return d
}

// parseRate 등락률 (%), 부호 없으면 전일대비 방향을 따른다
func parseRate(rateText, changeText string) decimal.Decimal {
	rate := parseDecimal(rateText)
	if rate.IsPositive() && !strings.Contains(rateText, "+") && parseDecimal(changeText).IsNegative() {
		return rate.Neg()
	}
	return rate
}

// HealthCheck 네이버 응답 확인
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.document(ctx, siseRoot)
	return err
}

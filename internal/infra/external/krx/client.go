package krx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/infra/external/euckr"
	"github.com/wonny/krxflow/internal/pkg/backoff"
	"github.com/wonny/krxflow/internal/pkg/config"
)

const (
	otpPath      = "/comm/fileDn/GenerateOTP/generate.cmd"
	downloadPath = "/comm/fileDn/download_csv/download.cmd"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	menuReferer      = "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader/index.cmd?menuId="
)

// headerSet 요청 헤더 묶음 (화면별 Referer)
type headerSet map[string]string

var (
	netBuyHeaders = headerSet{
		"User-Agent": browserUserAgent,
		"Referer":    menuReferer + "MDC0201020303",
	}
	priceHeaders = headerSet{
		"User-Agent": browserUserAgent,
		"Referer":    menuReferer + "MDC0201020101",
	}
	calendarHeaders = headerSet{
		"User-Agent":       "Mozilla/5.0",
		"Referer":          "http://data.krx.co.kr/",
		"X-Requested-With": "XMLHttpRequest",
	}
)

// Client KRX 정보데이터시스템 CSV 다운로드 클라이언트
// OTP 발급 → CSV 다운로드 2단계, 응답은 EUC-KR
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	retry      backoff.Config
}

var _ fetcher.KRXClient = (*Client)(nil)

// NewClient 클라이언트 생성
func NewClient(cfg config.KRXConfig) *Client {
	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}

	retryCfg := backoff.DefaultConfig("krx")
	retryCfg.Attempts = cfg.RetryAttempts
	if cfg.RetryBaseDelay > 0 {
		retryCfg.BaseDelay = cfg.RetryBaseDelay
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		retry:      retryCfg,
	}
}

// download OTP 발급 후 CSV 를 받아 파싱. 네트워크 오류만 재시도.
func (c *Client) download(ctx context.Context, headers headerSet, form url.Values) (*table, error) {
	var body []byte
	err := backoff.Do(ctx, c.retry, func(ctx context.Context) error {
		otp, err := c.post(ctx, otpPath, headers, form)
		if err != nil {
			return fmt.Errorf("generate otp: %w", err)
		}
		code := strings.TrimSpace(string(otp))
		if code == "" {
			return fmt.Errorf("generate otp: %w", fetcher.ErrEmptyPayload)
		}

		body, err = c.post(ctx, downloadPath, headers, url.Values{"code": {code}})
		if err != nil {
			return fmt.Errorf("download csv: %w", err)
		}
		return nil
	})
	if err != nil {
		if backoff.IsNetworkError(err) {
			return nil, fmt.Errorf("%w: %w", fetcher.ErrExternalFetch, err)
		}
		return nil, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("download csv: %w", fetcher.ErrEmptyPayload)
	}

	text, err := euckr.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode euc-kr: %v", fetcher.ErrInvalidResponse, err)
	}

	t, err := parseTable(text)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("csv has no rows: %w", fetcher.ErrEmptyPayload)
	}
	return t, nil
}

func (c *Client) post(ctx context.Context, path string, headers headerSet, form url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("KRX request")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s status %d", fetcher.ErrExternalFetch, path, resp.StatusCode)
	}

	return body, nil
}

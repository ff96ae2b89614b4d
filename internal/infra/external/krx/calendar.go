package krx

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/krxflow/internal/domain/calendar"
)

// 영업일 기준 종목 (삼성전자)
const (
	calendarIsuFinder = "005930/삼성전자"
	calendarIsuCode   = "KR7005930003"

	colDate    = "일자"
	dateLayout = "2006/01/02"
)

// FetchTradingDays 개별종목 일별 시세(MDCSTAT01701)의 일자 컬럼으로 영업일 추출
func (c *Client) FetchTradingDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	form := url.Values{
		"tboxisuCd_finder_stkisu0_0": {calendarIsuFinder},
		"isuCd":                      {calendarIsuCode},
		"strtDd":                     {calendar.FormatDate(from)},
		"endDd":                      {calendar.FormatDate(to)},
		"csvxls_isNo":                {"false"},
		"name":                       {"fileDown"},
		"url":                        {"dbms/MDC/STAT/standard/MDCSTAT01701"},
	}

	t, err := c.download(ctx, calendarHeaders, form)
	if err != nil {
		return nil, fmt.Errorf("trading days: %w", err)
	}
	if err := t.require(colDate); err != nil {
		return nil, fmt.Errorf("trading days: %w", err)
	}

	dates := make([]time.Time, 0, len(t.rows))
	skipped := 0
	for _, row := range t.rows {
		d, err := time.Parse(dateLayout, t.str(row, colDate))
		if err != nil {
			skipped++
			continue
		}
		dates = append(dates, d)
	}

	log.Debug().
		Int("count", len(dates)).
		Int("skipped", skipped).
		Msg("Fetched trading days from KRX")

	return dates, nil
}

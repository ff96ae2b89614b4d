package fetcher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wonny/krxflow/internal/domain/market"
	"github.com/wonny/krxflow/internal/domain/netbuy"
	"github.com/wonny/krxflow/internal/domain/price"
)

// =============================================================================
// StageRun Repository
// =============================================================================

// StageRunRepository 단계 실행 이력 저장소 (system.stage_runs)
type StageRunRepository interface {
	// Create 실행 시작 기록
	Create(ctx context.Context, run *StageRun) error

	// Update 실행 완료/실패 기록
	Update(ctx context.Context, run *StageRun) error

	// GetByID run_id 조회, 없으면 ErrRunNotFound
	GetByID(ctx context.Context, runID uuid.UUID) (*StageRun, error)

	// ListByDate 기준일 실행 이력 (시작 시각 순)
	ListByDate(ctx context.Context, date time.Time) ([]*StageRun, error)
}

// =============================================================================
// External Clients
// =============================================================================

// KRXClient KRX 정보데이터시스템 CSV 다운로드
type KRXClient interface {
	// FetchNetBuy 투자자별 전종목 순매수 (MDCSTAT02401)
	FetchNetBuy(ctx context.Context, date time.Time, class netbuy.InvestorClass) ([]netbuy.Record, error)

	// FetchDailyPrices 시장별 전종목 시세 (MDCSTAT01501)
	FetchDailyPrices(ctx context.Context, date time.Time, mkt price.Market) ([]price.DailyPrice, error)

	// FetchTradingDays 기준 종목 일별 시세로 영업일 추출 (MDCSTAT01701)
	FetchTradingDays(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// NaverClient 네이버 증권 시세 페이지
type NaverClient interface {
	// FetchMarketSummary 지수 요약 (/sise/)
	FetchMarketSummary(ctx context.Context) (*market.Summary, error)

	// FetchUpperLimit 상한가 종목 (/sise/sise_upper.naver)
	FetchUpperLimit(ctx context.Context) ([]market.FeaturedStock, error)
}

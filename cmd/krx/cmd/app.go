package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/domain/trx"
	"github.com/wonny/krxflow/internal/infra/database/postgres"
	pgcalendar "github.com/wonny/krxflow/internal/infra/database/postgres/calendar"
	pgfetcher "github.com/wonny/krxflow/internal/infra/database/postgres/fetcher"
	pgmarket "github.com/wonny/krxflow/internal/infra/database/postgres/market"
	pgnetbuy "github.com/wonny/krxflow/internal/infra/database/postgres/netbuy"
	pgprice "github.com/wonny/krxflow/internal/infra/database/postgres/price"
	pgpurge "github.com/wonny/krxflow/internal/infra/database/postgres/purge"
	pgtrx "github.com/wonny/krxflow/internal/infra/database/postgres/trx"
	"github.com/wonny/krxflow/internal/infra/export"
	"github.com/wonny/krxflow/internal/infra/external/krx"
	"github.com/wonny/krxflow/internal/infra/external/naver"
	"github.com/wonny/krxflow/internal/service/batch"
	calendarsvc "github.com/wonny/krxflow/internal/service/calendar"
	"github.com/wonny/krxflow/internal/service/indicator"
	marketsvc "github.com/wonny/krxflow/internal/service/market"
	netbuysvc "github.com/wonny/krxflow/internal/service/netbuy"
	pricesvc "github.com/wonny/krxflow/internal/service/price"
	purgesvc "github.com/wonny/krxflow/internal/service/purge"
	trxsvc "github.com/wonny/krxflow/internal/service/trx"
)

// app 한 번의 실행에 필요한 의존성
type app struct {
	pool   *postgres.Pool
	runner *batch.Runner
	steps  map[fetcher.Stage]batch.Step
}

// newApp DB 연결 + 저장소/클라이언트/서비스 조립
func newApp(ctx context.Context) (*app, error) {
	policy, err := trx.ParseStreakPolicy(cfg.Pipeline.CombinedStreakPolicy)
	if err != nil {
		return nil, err
	}
	startDate, err := calendar.ParseDate(cfg.Pipeline.CalendarStartDate)
	if err != nil {
		return nil, fmt.Errorf("CALENDAR_START_DATE: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Repositories
	calendarRepo := pgcalendar.NewRepository(pool)
	netBuyRepo := pgnetbuy.NewRepository(pool)
	priceRepo := pgprice.NewRepository(pool)
	indexRepo := pgprice.NewIndexRepository(pool)
	matrixRepo := pgtrx.NewMatrixRepository(pool)
	summaryRepo := pgtrx.NewSummaryRepository(pool)
	marketRepo := pgmarket.NewRepository(pool)
	purgeRepo := pgpurge.NewRepository(pool)
	stageRunRepo := pgfetcher.NewStageRunRepository(pool)

	// External clients
	krxClient := krx.NewClient(cfg.KRX)
	naverClient := naver.NewClient(cfg.Naver)
	exporter := export.NewWriter(cfg.Export.Dir)

	// Services
	resolver := calendarsvc.NewResolver(calendarRepo)
	aggregator := trxsvc.NewAggregator(resolver, netBuyRepo, matrixRepo, exporter, cfg.Pipeline.RankCutoff)
	summarizer := trxsvc.NewSummarizer(matrixRepo, summaryRepo, policy)
	grader := trxsvc.NewGrader(netBuyRepo, priceRepo, summaryRepo, matrixRepo, exporter)

	steps := []batch.Step{
		{Stage: fetcher.StagePurge, Run: purgesvc.NewService(purgeRepo).Run},
		{Stage: fetcher.StageCalendar, Run: calendarsvc.NewService(resolver, krxClient, exporter, startDate).Run},
		{Stage: fetcher.StagePrice, Run: pricesvc.NewService(krxClient, priceRepo, exporter).Run},
		{Stage: fetcher.StageIndicator, Run: indicator.NewService(resolver, priceRepo, indexRepo).Run},
		{Stage: fetcher.StageNetBuy, Run: netbuysvc.NewService(krxClient, netBuyRepo).Run},
		{Stage: fetcher.StageMatrix, Run: aggregator.Build},
		{Stage: fetcher.StageSummary, Run: func(ctx context.Context, date time.Time) (int, error) {
			n, err := summarizer.Run(ctx, date)
			if err != nil || n == 0 {
				return n, err
			}
			_, err = grader.Run(ctx, date)
			return n, err
		}},
	}

	byStage := make(map[fetcher.Stage]batch.Step, len(steps)+1)
	for _, s := range steps {
		byStage[s.Stage] = s
	}
	byStage[fetcher.StageMarket] = batch.Step{
		Stage: fetcher.StageMarket,
		Run:   marketsvc.NewService(naverClient, marketRepo).Run,
	}

	return &app{
		pool:   pool,
		runner: batch.NewRunner(steps, stageRunRepo, resolver, os.Stdout),
		steps:  byStage,
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

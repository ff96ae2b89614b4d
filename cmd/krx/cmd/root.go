// Package cmd - krx CLI commands
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/krxflow/internal/pkg/config"
	"github.com/wonny/krxflow/internal/pkg/logger"
)

const version = "1.0.0"

var (
	// 공통 플래그
	verbose bool

	cfg *config.Config
)

// rootCmd 루트 커맨드
var rootCmd = &cobra.Command{
	Use:   "krx",
	Short: "KRX 투자자 수급 배치",
	Long: `KRX 투자자 수급 배치

Usage:
    go run ./cmd/krx [command] [YYYYMMDD]

Commands:
    batch       전체 단계 실행 (purge → calendar → price → indicator → netbuy → matrix → summary)
    purge       기준일 데이터 초기화
    calendar    영업일 갱신
    price       일별 시세 수집
    indicator   RSI/OBV 계산
    netbuy      투자자별 순매수 수집
    matrix      7영업일 순매수 매트릭스
    summary     연속 매수 요약 + 등급
    market      네이버 지수 요약 + 상한가
    migrate     스키마 마이그레이션
    health      DB 상태 확인
    runs        단계 실행 이력 조회
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute 루트 커맨드 실행
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")

	rootCmd.AddCommand(batchCmd)
	for _, c := range stageCommands() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(runsCmd)
}

// initConfig .env + 환경변수 로드, 로거 초기화
func initConfig() error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}

	if err := logger.Init(logger.Config{
		Level:          loaded.Logging.Level,
		Format:         loaded.Logging.Format,
		FileEnabled:    loaded.Logging.FileEnabled,
		FilePath:       loaded.Logging.FilePath,
		RotationSize:   loaded.Logging.RotationSize,
		RetentionDays:  loaded.Logging.RetentionDays,
		ServiceName:    "krx",
		ServiceVersion: version,
	}); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

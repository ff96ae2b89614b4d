// Package main - krx batch CLI
// KRX 투자자 수급 배치 진입점
//
// 사용법:
//
//	go run ./cmd/krx batch 20250404
//	go run ./cmd/krx batch --from 20250401 --to 20250430
//	go run ./cmd/krx matrix 20250404
package main

import (
	"os"

	"github.com/wonny/krxflow/cmd/krx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

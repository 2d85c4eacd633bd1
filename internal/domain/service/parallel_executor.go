package service

import (
	"context"
	"sync"
	"time"

	"github.com/phuslu/log"
)

// TaskResult は並行処理1件分の結果
type TaskResult[R any] struct {
	Index int
	Value R
	Err   error
}

// ParallelExecutor はセマフォで同時実行数を制限しながらタスクを並行実行する
type ParallelExecutor struct {
	maxGoroutines int
}

// NewParallelExecutor は新しい並行実行インスタンスを作成
func NewParallelExecutor(maxGoroutines int) *ParallelExecutor {
	if maxGoroutines <= 0 {
		maxGoroutines = 5
	}
	return &ParallelExecutor{maxGoroutines: maxGoroutines}
}

// MaxGoroutines 同時実行数の上限を返す
func (p *ParallelExecutor) MaxGoroutines() int {
	return p.maxGoroutines
}

// RunParallel は各要素にfnを並行適用し、入力と同じ順序で結果を返す
// 個々の失敗は結果のErrに格納され、全体は中断しない
func RunParallel[T, R any](ctx context.Context, p *ParallelExecutor, label string, items []T, fn func(ctx context.Context, item T) (R, error)) []TaskResult[R] {
	if len(items) == 0 {
		return nil
	}
	log.Debug().Str("task", label).Int("count", len(items)).Msg("🚀 並行処理開始")
	start := time.Now()

	semaphore := make(chan struct{}, p.maxGoroutines)
	results := make(chan TaskResult[R], len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(index int, it T) {
			defer wg.Done()

			// セマフォを取得（同時実行数制限）
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			value, err := fn(ctx, it)
			results <- TaskResult[R]{Index: index, Value: value, Err: err}
		}(i, item)
	}

	// 別のgoroutineでwaitしてチャンネルを閉じる
	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]TaskResult[R], len(items))
	successCount, errorCount := 0, 0
	for r := range results {
		ordered[r.Index] = r
		if r.Err != nil {
			errorCount++
			continue
		}
		successCount++
	}

	log.Debug().Str("task", label).Int("success", successCount).Int("failed", errorCount).
		Dur("elapsed", time.Since(start)).Msg("✅ 並行処理完了")
	return ordered
}

package repository

import (
	"context"
	"time"

	"Itinerary-App/internal/domain/model"
)

// SessionRepository は旅程生成セッションの状態を保持する
// 1セッションの書き込みはパイプライン1本のみが行い、読み取りは任意数のクライアントが行う
type SessionRepository interface {
	Create(ctx context.Context) (*model.Session, error)
	Get(ctx context.Context, id string) (*model.Session, error)
	UpdateStatus(ctx context.Context, id string, event model.ProgressEvent) error
	Complete(ctx context.Context, id string, itinerary *model.Itinerary) error
	Fail(ctx context.Context, id string, message string) error
	// Subscribe は進捗イベントを受け取るチャネルと購読解除関数を返す
	Subscribe(ctx context.Context, id string) (<-chan model.ProgressEvent, func(), error)
	// DeleteExpired は指定時刻より前に更新されたセッションを削除し、削除件数を返す
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// ProgressReporter は1回の実行の進捗を順序通りに通知する
type ProgressReporter interface {
	Report(ctx context.Context, event model.ProgressEvent)
}

package repository

import (
	"context"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"Itinerary-App/internal/domain/repository"
)

// SessionSweeper は期限切れのセッションを定期的に削除する
type SessionSweeper struct {
	sessions repository.SessionRepository
	ttl      time.Duration
	cron     *cron.Cron
	now      func() time.Time
}

// NewSessionSweeper はttlより古いセッションを削除するスイーパーを作成する
func NewSessionSweeper(sessions repository.SessionRepository, ttl time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		ttl:      ttl,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start はcron形式のスケジュールで削除処理を開始する
func (s *SessionSweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = "@every 10m"
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Str("schedule", schedule).Dur("ttl", s.ttl).Msg("🧹 セッション削除スケジューラを開始しました")
	return nil
}

// Stop は実行中の削除処理の完了を待ってから停止する
func (s *SessionSweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("🧹 セッション削除スケジューラを停止しました")
}

// Sweep はTTLを過ぎたセッションを削除し、削除件数を返す
func (s *SessionSweeper) Sweep(ctx context.Context) int {
	deleted, err := s.sessions.DeleteExpired(ctx, s.now().Add(-s.ttl))
	if err != nil {
		log.Error().Err(err).Msg("❌ 期限切れセッションの削除に失敗")
		return 0
	}
	if deleted > 0 {
		log.Info().Int("count", deleted).Msg("🧹 期限切れセッションを削除しました")
	}
	return deleted
}

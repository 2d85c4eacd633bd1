package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
)

// subscriberBuffer 購読チャネルのバッファ数（1実行で発行されるイベント数より十分大きい）
const subscriberBuffer = 64

type sessionEntry struct {
	session     model.Session
	subscribers map[int]chan model.ProgressEvent
	nextSubID   int
}

// MemorySessionRepository はプロセス内メモリでセッションを保持するSessionRepository
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

var _ repository.SessionRepository = (*MemorySessionRepository)(nil)

func NewMemorySessionRepository() *MemorySessionRepository {
	return NewMemorySessionRepositoryWithClock(time.Now)
}

// NewMemorySessionRepositoryWithClock は時刻取得を差し替えたリポジトリを作成する
func NewMemorySessionRepositoryWithClock(now func() time.Time) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*sessionEntry),
		now:      now,
	}
}

func (r *MemorySessionRepository) Create(ctx context.Context) (*model.Session, error) {
	now := r.now()
	s := model.Session{
		ID: uuid.NewString(),
		Status: model.ProgressEvent{
			Stage:     model.StageQueued,
			Progress:  0,
			Message:   "Queued",
			Timestamp: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = &sessionEntry{session: s, subscribers: make(map[int]chan model.ProgressEvent)}
	r.mu.Unlock()

	copied := s
	return &copied, nil
}

// Get はセッションのスナップショットを返す
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	copied := entry.session
	return &copied, nil
}

func (r *MemorySessionRepository) UpdateStatus(ctx context.Context, id string, event model.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	// 終了済みのセッションは更新しない
	if entry.session.Status.Stage.IsTerminal() {
		return nil
	}
	r.applyEvent(entry, event)
	return nil
}

func (r *MemorySessionRepository) Complete(ctx context.Context, id string, itinerary *model.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	entry.session.Result = itinerary
	r.applyEvent(entry, model.ProgressEvent{
		Stage:    model.StageCompleted,
		Progress: 100,
		Message:  "Itinerary ready",
	})
	r.closeSubscribers(entry)
	return nil
}

func (r *MemorySessionRepository) Fail(ctx context.Context, id string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	entry.session.Error = message
	r.applyEvent(entry, model.ProgressEvent{
		Stage:    model.StageFailed,
		Progress: entry.session.Status.Progress,
		Message:  message,
	})
	r.closeSubscribers(entry)
	return nil
}

// Subscribe は現在の状態を最初のイベントとして送り、以降の更新を順に流す
// セッションが終了済みの場合は最終状態を1件送ってチャネルを閉じる
func (r *MemorySessionRepository) Subscribe(ctx context.Context, id string) (<-chan model.ProgressEvent, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, nil, model.ErrSessionNotFound
	}

	ch := make(chan model.ProgressEvent, subscriberBuffer)
	ch <- entry.session.Status
	if entry.session.Status.Stage.IsTerminal() {
		close(ch)
		return ch, func() {}, nil
	}

	subID := entry.nextSubID
	entry.nextSubID++
	entry.subscribers[subID] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := entry.subscribers[subID]; ok {
				delete(entry.subscribers, subID)
				close(c)
			}
		})
	}
	return ch, unsubscribe, nil
}

func (r *MemorySessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, entry := range r.sessions {
		if entry.session.UpdatedAt.Before(before) {
			r.closeSubscribers(entry)
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// applyEvent は状態を更新して購読者に配信する（ロック取得済みで呼ぶこと）
func (r *MemorySessionRepository) applyEvent(entry *sessionEntry, event model.ProgressEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	entry.session.Status = event
	entry.session.UpdatedAt = event.Timestamp

	for subID, ch := range entry.subscribers {
		select {
		case ch <- event:
		default:
			log.Warn().Str("session_id", entry.session.ID).Int("subscriber", subID).
				Msg("⚠️ 購読者の受信が追いつかないため進捗イベントを破棄しました")
		}
	}
}

func (r *MemorySessionRepository) closeSubscribers(entry *sessionEntry) {
	for subID, ch := range entry.subscribers {
		close(ch)
		delete(entry.subscribers, subID)
	}
}

// sessionProgressReporter は進捗をセッションに書き込むProgressReporter
type sessionProgressReporter struct {
	sessions  repository.SessionRepository
	sessionID string
}

// NewSessionProgressReporter は指定セッションに進捗を書き込むProgressReporterを作成
func NewSessionProgressReporter(sessions repository.SessionRepository, sessionID string) repository.ProgressReporter {
	return &sessionProgressReporter{sessions: sessions, sessionID: sessionID}
}

func (p *sessionProgressReporter) Report(ctx context.Context, event model.ProgressEvent) {
	if err := p.sessions.UpdateStatus(ctx, p.sessionID, event); err != nil {
		log.Warn().Err(err).Str("session_id", p.sessionID).Msg("⚠️ 進捗の書き込みに失敗")
	}
}

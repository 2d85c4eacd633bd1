package repository

import (
	"Itinerary-App/internal/domain/model"
	"context"
)

// StoryGenerationRepository は旅程のタイトルと紹介文を生成するリポジトリインターフェース
type StoryGenerationRepository interface {
	// GenerateNarrative はタイトル・全体の紹介文・日ごとの要約を同時に生成する
	GenerateNarrative(ctx context.Context, itinerary *model.Itinerary, prefs model.TripPreferences) (*model.Narrative, error)
}

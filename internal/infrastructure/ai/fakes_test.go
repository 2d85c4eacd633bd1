package ai

import (
	"context"

	"Itinerary-App/internal/domain/model"
)

// fakeChat は固定の応答を返すChatRepository
type fakeChat struct {
	response string
	err      error
	prompts  []string
	agents   []model.AgentType
}

func (f *fakeChat) Ask(_ context.Context, agent model.AgentType, prompt string) (string, error) {
	f.agents = append(f.agents, agent)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type fakeImageAnalyzer struct {
	response string
	err      error
	mimeType string
}

func (f *fakeImageAnalyzer) AnalyzeImage(_ context.Context, _ string, _ []byte, mimeType string) (string, error) {
	f.mimeType = mimeType
	return f.response, f.err
}

func kyotoPOIs() []*model.POI {
	return []*model.POI{
		{ID: "p1", Name: "Kiyomizu-dera", Category: model.CategoryTemple},
		{ID: "p2", Name: "Nishiki Market", Category: model.CategoryMarket},
		{ID: "p3", Name: "Gion Night Club", Category: model.CategoryActivity},
	}
}

func twoDayItinerary() *model.Itinerary {
	return &model.Itinerary{
		Destination: "Kyoto",
		Days: []model.DaySchedule{
			{DayIndex: 0, Date: "2025-04-01", Slots: []model.TimeSlot{{POIID: "p1", POIName: "Kiyomizu-dera", StartTime: "09:00"}}},
			{DayIndex: 1, Date: "2025-04-02", Slots: []model.TimeSlot{{POIID: "p2", POIName: "Nishiki Market", StartTime: "09:00"}}},
		},
	}
}

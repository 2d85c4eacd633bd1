package ai

import (
	"Itinerary-App/internal/domain/model"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// systemPrompt はエージェント種別ごとのシステムプロンプトを返す
func systemPrompt(agent model.AgentType) string {
	switch agent {
	case model.AgentVision:
		return "You extract travel locations from social media screenshots. Reply with JSON only."
	case model.AgentVibe:
		return "You judge whether travel spots fit a traveller's companions and style. Reply with JSON only."
	case model.AgentBudget:
		return "You are a frugal travel planner who trims itineraries to fit a budget. Reply with JSON only."
	case model.AgentNarrative:
		return "You write short, warm travel itinerary copy. Reply with JSON only."
	default:
		return "You are a helpful travel planning assistant."
	}
}

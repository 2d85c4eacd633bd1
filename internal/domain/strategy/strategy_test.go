package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Itinerary-App/internal/domain/model"
)

func TestFamilyStrategy(t *testing.T) {
	s := NewFamilyStrategy()

	assert.True(t, s.Applies(model.TripPreferences{CompanionType: model.CompanionFamily}))
	assert.True(t, s.Applies(model.TripPreferences{CompanionType: model.CompanionPartner}))
	assert.False(t, s.Applies(model.TripPreferences{CompanionType: model.CompanionFriends}))
	assert.False(t, s.Applies(model.TripPreferences{CompanionType: model.CompanionSolo}))

	cases := map[string]bool{
		"Pontocho Craft Beer Pub": true,
		"World Nightclub Kyoto":   true,
		"Barcelona Tapas":         false,
		"Kyoto Aquarium":          false,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			_, ng := s.Check(&model.POI{Name: name})
			assert.Equal(t, want, ng)
		})
	}
}

func TestRelaxationStrategy(t *testing.T) {
	s := NewRelaxationStrategy()

	assert.True(t, s.Applies(model.TripPreferences{TravelStyles: []model.TravelStyle{model.StyleRelaxation}}))
	assert.False(t, s.Applies(model.TripPreferences{TravelStyles: []model.TravelStyle{model.StyleRelaxation, model.StyleAdventure}}))

	reason, ng := s.Check(&model.POI{Name: "Hozugawa River Rafting", Category: model.CategoryActivity})
	assert.True(t, ng)
	assert.Contains(t, reason, "rafting")

	_, ng = s.Check(&model.POI{Name: "Rafting Museum", Category: model.CategoryAttraction})
	assert.False(t, ng)
}

func TestDefaultStrategies(t *testing.T) {
	names := []string{}
	for _, s := range DefaultStrategies() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"family", "relaxation"}, names)
}

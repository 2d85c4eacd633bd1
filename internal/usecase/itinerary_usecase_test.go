package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/service"
	repoImpl "Itinerary-App/internal/repository"
)

type fakeVision struct {
	byFile map[string]*model.VisionResult
}

func (f *fakeVision) Analyze(_ context.Context, shot model.ScreenshotInput) (*model.VisionResult, error) {
	if r, ok := f.byFile[shot.FileName]; ok {
		return r, nil
	}
	return nil, errors.New("vision unavailable")
}

// fakePlaces は既知の名前だけを検証済みにする
type fakePlaces struct {
	known       map[string]model.GeoPoint
	validateErr error
}

func (f *fakePlaces) ValidateLocations(_ context.Context, names []string, _ string) (*model.ValidationResult, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	result := &model.ValidationResult{}
	for _, n := range names {
		if _, ok := f.known[n]; !ok {
			result.Rejected = append(result.Rejected, model.RejectedLocation{Name: n, Reason: "not found"})
			continue
		}
		result.VerifiedPOIs = append(result.VerifiedPOIs, &model.POI{ID: "id-" + n, Name: n, Category: model.CategoryAttraction, Verified: true})
	}
	return result, nil
}

func (f *fakePlaces) EnrichPOI(_ context.Context, poi *model.POI) (*model.POI, error) {
	pt, ok := f.known[poi.Name]
	if !ok {
		return nil, errors.New("no details")
	}
	out := poi.Clone()
	out.Coordinates = &pt
	out.Address = poi.Name + ", Higashiyama Ward, Kyoto"
	return out, nil
}

type fakeVibe struct {
	incompatible map[string]string
}

func (f *fakeVibe) Classify(_ context.Context, pois []*model.POI, _ []string, _ model.TripPreferences) (*model.VibeResult, error) {
	result := &model.VibeResult{IncompatiblePOIIDs: map[string]struct{}{}, Reasons: map[string]string{}}
	for _, p := range pois {
		if reason, ok := f.incompatible[p.Name]; ok {
			result.IncompatiblePOIIDs[p.ID] = struct{}{}
			result.Reasons[p.ID] = reason
		}
	}
	return result, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (r *recordingReporter) Report(_ context.Context, event model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

var kyotoSpots = map[string]model.GeoPoint{
	"Kiyomizu-dera":  {Latitude: 34.994856, Longitude: 135.785046},
	"Yasaka Shrine":  {Latitude: 35.003656, Longitude: 135.778553},
	"Nishiki Market": {Latitude: 35.005000, Longitude: 135.764800},
	"Gion Bar Alley": {Latitude: 35.003900, Longitude: 135.775300},
}

func fixedNow() time.Time { return time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC) }

func newTestUseCase(collab Collaborators) (ItineraryUseCase, *repoImpl.MemorySessionRepository) {
	planner := service.NewItineraryPlannerWithClock(service.DefaultPlannerSettings(), nil, fixedNow)
	sessions := repoImpl.NewMemorySessionRepository()
	return NewItineraryUseCase(planner, sessions, collab, Options{MaxConcurrent: 2, Timeout: 5 * time.Second}), sessions
}

func kyotoRequest() *model.ItineraryRequest {
	return &model.ItineraryRequest{
		Destination: "Kyoto",
		NumDays:     1,
		Preferences: model.TripPreferences{DailyBudget: 500, CompanionType: model.CompanionFamily},
		Screenshots: []model.ScreenshotInput{
			{FileName: "post1.png", MIMEType: "image/png", Data: []byte{1}},
			{FileName: "post2.jpg", MIMEType: "image/jpeg", Data: []byte{2}},
		},
		ManualLocations: []string{" Nishiki Market ", "Atlantis"},
	}
}

func kyotoCollaborators() Collaborators {
	return Collaborators{
		Vision: &fakeVision{byFile: map[string]*model.VisionResult{
			"post1.png": {LocationNames: []string{"Kiyomizu-dera", "Yasaka Shrine"}, Hashtags: []string{"#kyoto"}, Platform: "instagram"},
			"post2.jpg": {LocationNames: []string{"Yasaka Shrine", "Gion Bar Alley"}, Hashtags: []string{"#kyoto", "#gion"}, Platform: "tiktok"},
		}},
		Places: &fakePlaces{known: kyotoSpots},
		Vibe:   &fakeVibe{incompatible: map[string]string{"Gion Bar Alley": "Nightlife venue"}},
	}
}

func TestItineraryUseCase_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("スクリーンショットから旅程を生成する", func(t *testing.T) {
		uc, _ := newTestUseCase(kyotoCollaborators())
		reporter := &recordingReporter{}

		it, err := uc.Generate(ctx, kyotoRequest(), reporter)
		require.NoError(t, err)

		require.Len(t, it.Days, 1)
		assert.Len(t, it.Days[0].Slots, 3)
		assert.NotContains(t, it.Days[0].POIIDs(), "id-Gion Bar Alley")
		assert.Equal(t, []string{"#kyoto", "#gion"}, it.Hashtags)
		assert.Equal(t, []string{"instagram", "tiktok"}, it.Platforms)
		require.Len(t, it.Rejected, 1)
		assert.Equal(t, "Atlantis", it.Rejected[0].Name)
		assert.Contains(t, it.Suggestions, "Skipped Gion Bar Alley: Nightlife venue")
		assert.Equal(t, "1-Day Kyoto Itinerary", it.Title)
		assert.NotEmpty(t, it.Days[0].Summary)
		assert.NotEmpty(t, it.ID)

		// 進捗は後戻りせず、最後はナラティブ段階
		require.NotEmpty(t, reporter.events)
		for i := 1; i < len(reporter.events); i++ {
			assert.GreaterOrEqual(t, reporter.events[i].Progress, reporter.events[i-1].Progress)
		}
		assert.Equal(t, model.StageAnalyzing, reporter.events[0].Stage)
		assert.Equal(t, model.StageNarrating, reporter.events[len(reporter.events)-1].Stage)
	})

	t.Run("コラボレーターが全て失敗しても推定データで旅程を作る", func(t *testing.T) {
		uc, _ := newTestUseCase(Collaborators{
			Vision: &fakeVision{},
			Places: &fakePlaces{validateErr: errors.New("quota exceeded")},
		})
		req := &model.ItineraryRequest{
			Destination: "Kyoto",
			Screenshots: []model.ScreenshotInput{{FileName: "fushimi-inari_screenshot.png", Data: []byte{1}}},
		}

		it, err := uc.Generate(ctx, req, nil)
		require.NoError(t, err)
		require.Len(t, it.Days, 1)
		require.Len(t, it.Days[0].Slots, 1)
		assert.Equal(t, "Fushimi Inari", it.Days[0].Slots[0].POIName)
		assert.NotEmpty(t, it.Warnings)
	})

	t.Run("ロケーションが1件もなければErrNoUsableLocations", func(t *testing.T) {
		uc, _ := newTestUseCase(Collaborators{Vision: &fakeVision{byFile: map[string]*model.VisionResult{
			"blank.png": {},
		}}})
		req := &model.ItineraryRequest{Screenshots: []model.ScreenshotInput{{FileName: "blank.png", Data: []byte{1}}}}

		_, err := uc.Generate(ctx, req, nil)
		assert.ErrorIs(t, err, model.ErrNoUsableLocations)
	})

	t.Run("検証で全件除外されればErrNoUsableLocations", func(t *testing.T) {
		uc, _ := newTestUseCase(Collaborators{Places: &fakePlaces{known: kyotoSpots}})
		req := &model.ItineraryRequest{ManualLocations: []string{"Atlantis", "El Dorado"}}

		_, err := uc.Generate(ctx, req, nil)
		assert.ErrorIs(t, err, model.ErrNoUsableLocations)
	})
}

func TestItineraryUseCase_StartAndResult(t *testing.T) {
	ctx := context.Background()

	t.Run("バックグラウンド実行が完了すると結果を取得できる", func(t *testing.T) {
		uc, _ := newTestUseCase(kyotoCollaborators())
		session, err := uc.Start(ctx, kyotoRequest())
		require.NoError(t, err)
		uc.Wait()

		got, err := uc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StageCompleted, got.Status.Stage)
		assert.Equal(t, 100, got.Status.Progress)

		it, err := uc.GetResult(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, it.ID)
	})

	t.Run("失敗したセッションはErrSessionFailedとメッセージを返す", func(t *testing.T) {
		uc, _ := newTestUseCase(Collaborators{})
		session, err := uc.Start(ctx, &model.ItineraryRequest{})
		require.NoError(t, err)
		uc.Wait()

		_, err = uc.GetResult(ctx, session.ID)
		assert.ErrorIs(t, err, model.ErrSessionFailed)
		assert.Contains(t, err.Error(), "No usable locations")
	})

	t.Run("実行中のセッションはErrSessionNotReady", func(t *testing.T) {
		uc, sessions := newTestUseCase(Collaborators{})
		session, _ := sessions.Create(ctx)

		_, err := uc.GetResult(ctx, session.ID)
		assert.ErrorIs(t, err, model.ErrSessionNotReady)
	})

	t.Run("存在しないセッションはErrSessionNotFound", func(t *testing.T) {
		uc, _ := newTestUseCase(Collaborators{})
		_, err := uc.GetResult(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
	})
}

func TestItineraryUseCase_Plan(t *testing.T) {
	uc, _ := newTestUseCase(Collaborators{})
	pois := make([]*model.POI, 0, len(kyotoSpots))
	for _, name := range []string{"Kiyomizu-dera", "Yasaka Shrine", "Nishiki Market"} {
		pt := kyotoSpots[name]
		pois = append(pois, &model.POI{ID: name, Name: name, Category: model.CategoryAttraction, Coordinates: &pt})
	}

	it, err := uc.Plan(context.Background(), &model.PlanRequest{Destination: "Kyoto", NumDays: 2, POIs: pois})
	require.NoError(t, err)
	assert.Len(t, it.Days, 2)
	assert.Equal(t, 3, it.TotalSlots())
	assert.Equal(t, "2-Day Kyoto Itinerary", it.Title)

	_, err = uc.Plan(context.Background(), &model.PlanRequest{Destination: "Kyoto"})
	assert.ErrorIs(t, err, model.ErrNoUsableLocations)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/service"
	"Itinerary-App/internal/export"
	repoImpl "Itinerary-App/internal/repository"
	"Itinerary-App/internal/usecase"
)

// pngBytes はPNGとして判定される最小限のデータ
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type testServer struct {
	router   *gin.Engine
	useCase  usecase.ItineraryUseCase
	sessions *repoImpl.MemorySessionRepository
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := func() time.Time { return time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC) }
	planner := service.NewItineraryPlannerWithClock(service.DefaultPlannerSettings(), nil, now)
	sessions := repoImpl.NewMemorySessionRepository()
	uc := usecase.NewItineraryUseCase(planner, sessions, usecase.Collaborators{}, usecase.Options{Timeout: 5 * time.Second})

	router := NewRouter(
		NewItineraryHandler(uc, export.NewExporter(), UploadLimits{MaxScreenshots: 2, MaxUploadBytes: 1 << 20}),
		NewProgressStreamHandler(uc),
		NewHealthHandler("itinerary-app", nil),
	)
	return &testServer{router: router, useCase: uc, sessions: sessions}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type upload struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files []upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("screenshots", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/itineraries", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func kyotoFields() map[string]string {
	return map[string]string{
		"destination":    "Kyoto",
		"daily_budget":   "150",
		"currency":       "jpy",
		"companion_type": "Partner",
		"travel_styles":  "culture, food",
		"locations":      "Nishiki Market, Yasaka Shrine",
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// startSession はアップロードを受け付けさせ、処理完了まで待ってセッションIDを返す
func (s *testServer) startSession(t *testing.T, fields map[string]string, files []upload) string {
	t.Helper()
	w := s.do(multipartRequest(t, fields, files))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	s.useCase.Wait()
	return decodeBody(t, w)["session_id"].(string)
}

func TestItineraryHandler_UploadFlow(t *testing.T) {
	s := setupTestServer(t)
	id := s.startSession(t, kyotoFields(), []upload{{name: "kiyomizu-dera.png", data: pngBytes}})

	t.Run("進捗は完了を返す", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+id+"/status", nil))
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "completed", body["stage"])
		assert.Equal(t, float64(100), body["progress"])
	})

	t.Run("結果に3件のスポットが含まれる", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var it model.Itinerary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
		assert.Equal(t, id, it.ID)
		assert.Equal(t, 3, it.TotalSlots())
		assert.Equal(t, "JPY", it.Budget.Currency)
	})

	t.Run("テキストでエクスポートできる", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+id+"/export?format=text", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
		assert.Contains(t, w.Body.String(), "Kiyomizu Dera")
	})

	t.Run("PDFは添付ファイルとして返す", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+id+"/export?format=pdf", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="kyoto.pdf"`, w.Header().Get("Content-Disposition"))
	})

	t.Run("未対応の形式は400", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+id+"/export?format=docx", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestItineraryHandler_UploadValidation(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name      string
		mutate    func(map[string]string)
		files     []upload
		wantField string
	}{
		{
			name:      "画像以外のファイルは拒否する",
			files:     []upload{{name: "notes.png", data: []byte("just some text")}},
			wantField: "screenshots",
		},
		{
			name:      "予算がない場合は拒否する",
			mutate:    func(f map[string]string) { delete(f, "daily_budget") },
			wantField: "daily_budget",
		},
		{
			name:      "不明な同行者は拒否する",
			mutate:    func(f map[string]string) { f["companion_type"] = "pets" },
			wantField: "companion_type",
		},
		{
			name:      "終了日が開始日より前なら拒否する",
			mutate:    func(f map[string]string) { f["start_date"], f["end_date"] = "2025-04-03", "2025-04-01" },
			wantField: "end_date",
		},
		{
			name:      "画像もロケーションもない場合は拒否する",
			mutate:    func(f map[string]string) { delete(f, "locations") },
			wantField: "screenshots",
		},
		{
			name:      "枚数上限を超える場合は拒否する",
			files:     []upload{{"a.png", pngBytes}, {"b.png", pngBytes}, {"c.png", pngBytes}},
			wantField: "screenshots",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := kyotoFields()
			if tt.mutate != nil {
				tt.mutate(fields)
			}
			w := s.do(multipartRequest(t, fields, tt.files))
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantField, decodeBody(t, w)["field"])
		})
	}
}

func TestItineraryHandler_SessionStates(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	t.Run("存在しないセッションは404", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/missing/status", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("処理中のセッションは409", func(t *testing.T) {
		session, err := s.sessions.Create(ctx)
		require.NoError(t, err)
		require.NoError(t, s.sessions.UpdateStatus(ctx, session.ID, model.ProgressEvent{Stage: model.StagePlanning, Progress: 70}))

		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+session.ID, nil))
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "planning", decodeBody(t, w)["stage"])
	})

	t.Run("失敗したセッションは422とメッセージ", func(t *testing.T) {
		session, err := s.sessions.Create(ctx)
		require.NoError(t, err)
		require.NoError(t, s.sessions.Fail(ctx, session.ID, "No usable locations were found."))

		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/"+session.ID+"/export?format=json", nil))
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "No usable locations were found.", decodeBody(t, w)["details"])
	})
}

func TestItineraryHandler_PostPlan(t *testing.T) {
	s := setupTestServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return s.do(req)
	}

	t.Run("POIから旅程を組み立てる", func(t *testing.T) {
		w := post(`{
			"destination": "Kyoto",
			"num_days": 1,
			"preferences": {"daily_budget": 100, "currency": "USD"},
			"pois": [
				{"id": "a", "name": "Kiyomizu-dera", "category": "temple", "coordinates": {"latitude": 34.994856, "longitude": 135.785046}},
				{"id": "b", "name": "Nishiki Market", "category": "market", "coordinates": {"latitude": 35.005, "longitude": 135.7648}}
			]
		}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var it model.Itinerary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
		require.Len(t, it.Days, 1)
		assert.Len(t, it.Days[0].Slots, 2)
		assert.NotEmpty(t, it.Title)
	})

	t.Run("POIが空なら400", func(t *testing.T) {
		w := post(`{"destination": "Kyoto", "preferences": {"daily_budget": 100}, "pois": []}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "pois", decodeBody(t, w)["field"])
	})

	t.Run("IDの重複は400", func(t *testing.T) {
		w := post(`{"preferences": {"daily_budget": 100}, "pois": [{"id": "a", "name": "A"}, {"id": "a", "name": "B"}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "pois[1].id", decodeBody(t, w)["field"])
	})

	t.Run("nullのPOIは400", func(t *testing.T) {
		w := post(`{"preferences": {"daily_budget": 100}, "pois": [null]}`)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "pois[0]", body["field"])
		assert.Equal(t, "必須項目です", body["details"])
	})

	t.Run("緯度が範囲外なら400", func(t *testing.T) {
		w := post(`{"preferences": {"daily_budget": 100}, "pois": [{"id": "a", "name": "A", "coordinates": {"latitude": 95, "longitude": 0}}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "pois[0].coordinates.latitude", decodeBody(t, w)["field"])
	})

	t.Run("JSONが壊れていれば400", func(t *testing.T) {
		w := post(`{"pois": [`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	s := setupTestServer(t)
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestProgressStreamHandler_StreamEvents(t *testing.T) {
	s := setupTestServer(t)
	id := s.startSession(t, kyotoFields(), nil)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/itineraries/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var event model.ProgressEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, model.StageCompleted, event.Stage)

	// 終了状態のセッションは最終イベントの後に閉じられる
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "err=%v", err)

	t.Run("存在しないセッションは404", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/itineraries/missing/events", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

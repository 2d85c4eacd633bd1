package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/export"
	"Itinerary-App/internal/usecase"
)

// UploadLimits はアップロードの上限
type UploadLimits struct {
	MaxScreenshots int
	MaxUploadBytes int64
}

// ItineraryHandler は旅程生成APIのハンドラー
type ItineraryHandler struct {
	useCase  usecase.ItineraryUseCase
	exporter export.Exporter
	limits   UploadLimits
}

// NewItineraryHandler は新しいItineraryHandlerインスタンスを作成
func NewItineraryHandler(useCase usecase.ItineraryUseCase, exporter export.Exporter, limits UploadLimits) *ItineraryHandler {
	if limits.MaxScreenshots <= 0 {
		limits.MaxScreenshots = 10
	}
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = 32 << 20
	}
	return &ItineraryHandler{
		useCase:  useCase,
		exporter: exporter,
		limits:   limits,
	}
}

// PostItinerary はスクリーンショットを受け付けて旅程生成を開始するエンドポイント
// POST /api/itineraries
func (h *ItineraryHandler) PostItinerary(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "multipart/form-dataの解析に失敗しました",
			"details": err.Error(),
		})
		return
	}

	req, err := parsePreferencesForm(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	files := form.File["screenshots"]
	if len(files) > h.limits.MaxScreenshots {
		respondValidationError(c, &ValidationError{
			Field:   "screenshots",
			Message: fmt.Sprintf("スクリーンショットは%d枚までです", h.limits.MaxScreenshots),
		})
		return
	}
	if len(files) == 0 && len(req.ManualLocations) == 0 {
		respondValidationError(c, &ValidationError{Field: "screenshots", Message: "スクリーンショットまたはlocationsを指定してください"})
		return
	}

	for _, fh := range files {
		shot, err := readScreenshot(fh)
		if err != nil {
			respondValidationError(c, err)
			return
		}
		req.Screenshots = append(req.Screenshots, *shot)
	}

	session, err := h.useCase.Start(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "旅程生成の開始に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"session_id": session.ID,
		"status_url": "/api/itineraries/" + session.ID + "/status",
		"result_url": "/api/itineraries/" + session.ID,
	})
}

// readScreenshot はアップロードファイルを読み込み、内容から画像形式を判定する
func readScreenshot(fh *multipart.FileHeader) (*model.ScreenshotInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, &ValidationError{Field: "screenshots", Message: fmt.Sprintf("%sを開けません", fh.Filename)}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &ValidationError{Field: "screenshots", Message: fmt.Sprintf("%sを読み込めません", fh.Filename)}
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, &ValidationError{
			Field:   "screenshots",
			Message: fmt.Sprintf("%sは画像ではありません (%s)", fh.Filename, mt.String()),
		}
	}
	return &model.ScreenshotInput{
		FileName: fh.Filename,
		MIMEType: mt.String(),
		Data:     data,
	}, nil
}

// GetStatus は進捗を返すエンドポイント
// GET /api/itineraries/:id/status
func (h *ItineraryHandler) GetStatus(c *gin.Context) {
	session, err := h.useCase.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stage":         session.Status.Stage,
		"progress":      session.Status.Progress,
		"message":       session.Status.Message,
		"current_agent": session.Status.CurrentAgent,
	})
}

// GetResult は完成した旅程を返すエンドポイント
// GET /api/itineraries/:id
func (h *ItineraryHandler) GetResult(c *gin.Context) {
	itinerary, err := h.useCase.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondResultError(c, err)
		return
	}
	c.JSON(http.StatusOK, itinerary)
}

// GetExport は旅程を指定形式で書き出すエンドポイント
// GET /api/itineraries/:id/export?format=json|text|markdown|html|pdf|budget-chart
func (h *ItineraryHandler) GetExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "未対応のエクスポート形式です",
			"details": err.Error(),
		})
		return
	}

	itinerary, err := h.useCase.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondResultError(c, err)
		return
	}

	doc, err := h.exporter.Export(itinerary, format)
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("❌ エクスポートに失敗")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "エクスポートに失敗しました",
			"details": err.Error(),
		})
		return
	}

	if c.Query("download") == "true" || format == export.FormatPDF {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// PostPlan は位置情報付きPOIから旅程を同期で組み立てるエンドポイント
// POST /api/plan
func (h *ItineraryHandler) PostPlan(c *gin.Context) {
	var req model.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}
	if err := validateStruct(req); err != nil {
		respondValidationError(c, err)
		return
	}
	if _, _, err := req.Preferences.TripDays(); err != nil {
		respondValidationError(c, &ValidationError{Field: "preferences.end_date", Message: err.Error()})
		return
	}
	if err := checkUniqueIDs(req.POIs); err != nil {
		respondValidationError(c, err)
		return
	}

	itinerary, err := h.useCase.Plan(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrNoUsableLocations) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "旅程を作成できませんでした",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "旅程の作成に失敗しました",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, itinerary)
}

func checkUniqueIDs(pois []*model.POI) error {
	seen := make(map[string]struct{}, len(pois))
	for i, p := range pois {
		if p == nil {
			return &ValidationError{Field: fmt.Sprintf("pois[%d]", i), Message: "必須項目です"}
		}
		if _, dup := seen[p.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("pois[%d].id", i), Message: "IDが重複しています"}
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func (h *ItineraryHandler) respondResultError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSessionNotReady):
		status := gin.H{"error": "旅程の生成が完了していません"}
		if session, serr := h.useCase.GetSession(c.Request.Context(), c.Param("id")); serr == nil {
			status["stage"] = session.Status.Stage
			status["progress"] = session.Status.Progress
		}
		c.JSON(http.StatusConflict, status)
	case errors.Is(err, model.ErrSessionFailed):
		details := err.Error()
		if session, serr := h.useCase.GetSession(c.Request.Context(), c.Param("id")); serr == nil {
			details = session.Error
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "旅程の生成に失敗しました",
			"details": details,
		})
	default:
		respondSessionError(c, err)
	}
}

func respondSessionError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "セッションが見つかりません",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "セッションの取得に失敗しました",
		"details": err.Error(),
	})
}

func respondValidationError(c *gin.Context, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"field":   ve.Field,
			"details": ve.Message,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "バリデーションエラー",
		"details": err.Error(),
	})
}

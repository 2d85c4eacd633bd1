package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"Itinerary-App/internal/domain/model"
)

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct は構造体タグで検証し、最初の違反をValidationErrorにして返す
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fieldPath(fe.Namespace()), Message: describeTag(fe)}
}

// fieldPath は "PlanRequest.Preferences.DailyBudget" を "preferences.daily_budget" に変換する
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && runes[i-1] != '[' && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です"
	case "min", "gte":
		return fmt.Sprintf("%s以上を指定してください", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s以下を指定してください", fe.Param())
	case "oneof":
		return fmt.Sprintf("次のいずれかを指定してください: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("%s の形式で指定してください", fe.Param())
	default:
		return fmt.Sprintf("値が不正です (%s)", fe.Tag())
	}
}

// formValues はmultipartフォームの値を取り出すための最小限のインターフェース
type formValues interface {
	PostForm(key string) string
	PostFormArray(key string) []string
}

// parsePreferencesForm はフォーム値から希望条件とリクエスト本体を組み立てる
func parsePreferencesForm(form formValues) (*model.ItineraryRequest, error) {
	req := &model.ItineraryRequest{
		Destination: strings.TrimSpace(form.PostForm("destination")),
		Preferences: model.TripPreferences{
			Currency:      strings.ToUpper(strings.TrimSpace(form.PostForm("currency"))),
			CompanionType: model.CompanionType(strings.ToLower(strings.TrimSpace(form.PostForm("companion_type")))),
			StartDate:     strings.TrimSpace(form.PostForm("start_date")),
			EndDate:       strings.TrimSpace(form.PostForm("end_date")),
			DayStartTime:  strings.TrimSpace(form.PostForm("day_start_time")),
			DayEndTime:    strings.TrimSpace(form.PostForm("day_end_time")),
		},
	}

	budget := strings.TrimSpace(form.PostForm("daily_budget"))
	if budget == "" {
		return nil, &ValidationError{Field: "daily_budget", Message: "必須項目です"}
	}
	v, err := strconv.ParseFloat(budget, 64)
	if err != nil || v <= 0 {
		return nil, &ValidationError{Field: "daily_budget", Message: "正の数値を指定してください"}
	}
	req.Preferences.DailyBudget = v

	if days := strings.TrimSpace(form.PostForm("num_days")); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 || n > 30 {
			return nil, &ValidationError{Field: "num_days", Message: "1から30の整数を指定してください"}
		}
		req.NumDays = n
	}

	req.Preferences.TravelStyles = parseTravelStyles(form.PostFormArray("travel_styles"))
	req.ManualLocations = splitList(form.PostFormArray("locations"))

	if err := validateStruct(req.Preferences); err != nil {
		return nil, err
	}
	if _, _, err := req.Preferences.TripDays(); err != nil {
		return nil, &ValidationError{Field: "end_date", Message: err.Error()}
	}
	return req, nil
}

// parseTravelStyles は繰り返し指定とカンマ区切りの両方を受け付ける
func parseTravelStyles(values []string) []model.TravelStyle {
	var styles []model.TravelStyle
	for _, s := range splitList(values) {
		styles = append(styles, model.TravelStyle(strings.ToLower(s)))
	}
	return styles
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

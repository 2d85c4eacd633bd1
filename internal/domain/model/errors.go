package model

import "errors"

var (
	// ErrNoUsableLocations 検証後に利用可能なロケーションが1件もない（ユーザーに通知される致命的エラー）
	ErrNoUsableLocations = errors.New("利用可能なロケーションが見つかりませんでした")
	// ErrSessionNotFound 指定されたセッションが存在しない
	ErrSessionNotFound = errors.New("セッションが見つかりません")
	// ErrSessionNotReady セッションの処理がまだ完了していない
	ErrSessionNotReady = errors.New("旅程の生成が完了していません")
	// ErrSessionFailed セッションの処理が失敗して終了している
	ErrSessionFailed = errors.New("旅程の生成に失敗しました")
)

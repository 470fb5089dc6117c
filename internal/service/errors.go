package service

import "errors"

// Ошибки сервиса
var (
	ErrStateNotFound    = errors.New("состояние не найдено")
	ErrCategoryNotFound = errors.New("категория не найдена")
	ErrProductNotFound  = errors.New("товар не найден")
	ErrUnavailable      = errors.New("данные временно недоступны")
	ErrInvalidDays      = errors.New("период должен быть от 1 до 90 дней")
)

// Сообщения для пользователя
const (
	MsgStateNotFound    = "選択された状態が見つかりません。"
	MsgUnavailable      = "データの取得に失敗しました。しばらく時間をおいてから再度お試しください。"
	MsgGenericError     = "エラーが発生しました"
	MsgNotAuthorized    = "管理者権限が必要です"
	MsgStoreUnavailable = "データベースが設定されていないため、保存できません"
	MsgNotFound         = "対象のデータが見つかりません"
	MsgInUse            = "関連するデータが存在しないか、使用中のため操作できません"
	MsgConflict         = "同じデータが既に存在します"
	MsgInvalidInput     = "入力内容が正しくありません"
)

package models

// MutationStage этап конвейера админской операции
type MutationStage string

const (
	StageAuthorizing MutationStage = "authorizing"
	StageValidating  MutationStage = "validating"
	StageWriting     MutationStage = "writing"
	StageSucceeded   MutationStage = "succeeded"
)

// MutationResult единая форма ответа админских операций.
// Ошибки наружу не пробрасываются, только текст для пользователя.
type MutationResult[T any] struct {
	Success  bool          `json:"success"`
	Data     *T            `json:"data,omitempty"`
	Error    string        `json:"error,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Stage    MutationStage `json:"stage"`
}

func Succeeded[T any](data *T) MutationResult[T] {
	return MutationResult[T]{Success: true, Data: data, Stage: StageSucceeded}
}

func Failed[T any](stage MutationStage, message string) MutationResult[T] {
	return MutationResult[T]{Success: false, Error: message, Stage: stage}
}

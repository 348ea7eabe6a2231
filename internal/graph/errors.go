package graph

import "errors"

// Ошибки валидации WorkflowSpec.
var (
	// ErrEmptyJobs — workflow не содержит jobs.
	ErrEmptyJobs = errors.New("workflow spec has no jobs")

	// ErrEmptyJobID — job не имеет ID.
	ErrEmptyJobID = errors.New("job has empty ID")

	// ErrDuplicateJobID — несколько jobs с одинаковым ID.
	ErrDuplicateJobID = errors.New("duplicate job ID")

	// ErrDuplicateOutput — один и тот же файл объявлен в outputs нескольких jobs.
	ErrDuplicateOutput = errors.New("output produced by multiple jobs")

	// ErrAmbiguousExec — у job задано больше одного execution descriptor
	// (command/script/wrapper взаимоисключимы).
	ErrAmbiguousExec = errors.New("job has more than one execution descriptor")

	// ErrCyclicDependency — обнаружен цикл в графе зависимостей.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// Ошибки разрешения execution descriptor.
var (
	// ErrScriptUnreadable — файл скрипта не удалось прочитать.
	ErrScriptUnreadable = errors.New("script source unreadable")

	// ErrWrapperUnreadable — wrapper-скрипт не удалось прочитать.
	ErrWrapperUnreadable = errors.New("wrapper source unreadable")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	JobID   string // ID job, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.JobID != "" {
		return "job " + e.JobID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(jobID, field, message string, err error) *ValidationError {
	return &ValidationError{
		JobID:   jobID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

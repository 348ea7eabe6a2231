package provenance

import "errors"

// Ошибки вычисления provenance-хэша.
// Все они не подлежат retry: job в текущем виде не кэшируется.
var (
	// ErrMultipleOutputs — job объявляет больше одного output файла.
	// Per-output хэш нельзя вывести без материализации выходов,
	// что противоречит хэшированию до выполнения.
	ErrMultipleOutputs = errors.New("job has more than one output file")

	// ErrUnhashableParam — значение параметра не сериализуется
	// в каноническую форму.
	ErrUnhashableParam = errors.New("parameter value is not hashable")

	// ErrInputRead — внешний входной файл не удалось прочитать.
	ErrInputRead = errors.New("input file unreadable")

	// ErrUnknownExecKind — неизвестный вид execution descriptor.
	ErrUnknownExecKind = errors.New("unknown execution descriptor kind")
)

// HashError — ошибка хэширования с контекстом job.
type HashError struct {
	JobID   string // ID job, на котором прервалось вычисление
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *HashError) Error() string {
	return "job " + e.JobID + ": " + e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *HashError) Unwrap() error {
	return e.Err
}

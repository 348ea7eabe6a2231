package graph

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shaiso/Lineage/internal/domain"
)

// ExecKind — вид execution descriptor.
type ExecKind int

// Виды execution descriptor. У job заполнен ровно один вариант
// (или ни одного — ExecNone).
const (
	// ExecNone — job не имеет execution descriptor.
	ExecNone ExecKind = iota

	// ExecCommand — inline shell-команда.
	ExecCommand

	// ExecScript — скрипт, источник прочитан с диска.
	ExecScript

	// ExecWrapper — wrapper-скрипт, источник прочитан по префиксу.
	ExecWrapper
)

// String возвращает имя вида для вывода.
func (k ExecKind) String() string {
	switch k {
	case ExecNone:
		return "none"
	case ExecCommand:
		return "command"
	case ExecScript:
		return "script"
	case ExecWrapper:
		return "wrapper"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ExecSpec — разрешённый execution descriptor: tagged variant
// с видом и исходным текстом.
//
// Source — сырой, неформатированный текст (команда как записана
// в спецификации, либо содержимое файла скрипта). Подстановка
// параметров, потоков и имён файлов сюда не попадает — иначе
// provenance-хэш зависел бы от нерелевантных деталей запуска.
type ExecSpec struct {
	Kind   ExecKind
	Source string
}

// resolveExec разрешает execution descriptor job'а.
//
// Для script и wrapper читает источник с диска; ошибка чтения —
// ошибка построения графа, а не хэширования.
func resolveExec(def *domain.JobDef, settings domain.Settings) (ExecSpec, error) {
	switch {
	case def.Command != "":
		return ExecSpec{Kind: ExecCommand, Source: def.Command}, nil

	case def.Script != "":
		source, err := os.ReadFile(def.Script)
		if err != nil {
			return ExecSpec{}, NewValidationError(def.ID, "script",
				fmt.Sprintf("read script %s: %v", def.Script, err), ErrScriptUnreadable)
		}
		return ExecSpec{Kind: ExecScript, Source: string(source)}, nil

	case def.Wrapper != "":
		path := def.Wrapper
		if settings.WrapperPrefix != "" {
			path = filepath.Join(settings.WrapperPrefix, def.Wrapper)
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return ExecSpec{}, NewValidationError(def.ID, "wrapper",
				fmt.Sprintf("read wrapper %s: %v", path, err), ErrWrapperUnreadable)
		}
		return ExecSpec{Kind: ExecWrapper, Source: string(source)}, nil

	default:
		return ExecSpec{Kind: ExecNone}, nil
	}
}

package domain

// WorkflowSpec — спецификация task-графа.
//
// Это декларативное описание workflow: набор jobs с входными/выходными
// файлами и параметрами. Зависимости между jobs не объявляются явно —
// они выводятся из пересечения inputs/outputs (job B зависит от job A,
// если A производит файл, который B потребляет).
type WorkflowSpec struct {
	// Version — версия формата спецификации (для обратной совместимости).
	Version string `json:"version,omitempty"`

	// Name — имя workflow (используется как ключ в индексе provenance-хэшей).
	Name string `json:"name,omitempty"`

	// Description — описание назначения workflow.
	Description string `json:"description,omitempty"`

	// Settings — глобальные настройки workflow.
	Settings *Settings `json:"settings,omitempty"`

	// Jobs — список jobs графа.
	Jobs []JobDef `json:"jobs"`
}

// Settings — глобальные настройки workflow.
//
// Флаги активации окружений действуют на уровне всего workflow,
// а не отдельного job: job может объявлять окружение, но оно попадает
// в provenance-хэш только при включённом флаге.
type Settings struct {
	// UseEnv — учитывать reproducible-environment (содержимое env-спецификации).
	UseEnv bool `json:"use_env,omitempty"`

	// UseContainer — учитывать container image reference.
	UseContainer bool `json:"use_container,omitempty"`

	// WrapperPrefix — префикс пути для wrapper-скриптов.
	// Итоговый путь: {wrapper_prefix}/{wrapper}.
	WrapperPrefix string `json:"wrapper_prefix,omitempty"`
}

// JobDef — определение одного job в workflow.
type JobDef struct {
	// ID — уникальный идентификатор job в рамках workflow.
	// Не влияет на provenance-хэш: переименование job не меняет digest.
	ID string `json:"id"`

	// Name — человекочитаемое имя job.
	Name string `json:"name,omitempty"`

	// Command — inline shell-команда.
	// Взаимоисключим с Script и Wrapper.
	Command string `json:"command,omitempty"`

	// Script — путь к файлу скрипта. Содержимое файла (а не путь)
	// попадает в provenance-хэш.
	Script string `json:"script,omitempty"`

	// Wrapper — путь к wrapper-скрипту относительно Settings.WrapperPrefix.
	Wrapper string `json:"wrapper,omitempty"`

	// Params — параметры job. Значения должны быть сериализуемы в JSON,
	// иначе job не кэшируется.
	Params map[string]any `json:"params,omitempty"`

	// Inputs — упорядоченный список входных файлов.
	Inputs []string `json:"inputs,omitempty"`

	// Outputs — список выходных файлов.
	// Для кэширования job должен иметь не более одного output.
	Outputs []string `json:"outputs,omitempty"`

	// Env — описание окружения выполнения (опционально).
	Env *EnvDef `json:"env,omitempty"`

	// Threads — количество потоков для выполнения.
	// Не влияет на provenance-хэш.
	Threads int `json:"threads,omitempty"`

	// Resources — лимиты ресурсов (memory_mb, disk_mb и т.д.).
	// Не влияют на provenance-хэш.
	Resources map[string]int `json:"resources,omitempty"`
}

// EnvDef — описание окружения выполнения job.
type EnvDef struct {
	// Content — содержимое спецификации reproducible-environment
	// (например, текст lock-файла или env-манифеста).
	Content string `json:"content,omitempty"`

	// Container — ссылка на container image (например, "docker://ubuntu:24.04").
	Container string `json:"container,omitempty"`
}

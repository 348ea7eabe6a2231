package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Lineage/internal/graph"
	"github.com/shaiso/Lineage/internal/telemetry"
)

// Version — версия алгоритма хэширования.
//
// ВНИМАНИЕ: увеличивайте при любом изменении алгоритма ниже!
// Версия участвует во внешнем слое digest, поэтому bump инвалидирует
// все ранее вычисленные ключи кэша — даже те, что случайно совпали бы
// со старым алгоритмом.
const Version = "0.1"

// Engine вычисляет provenance-хэши jobs.
//
// Engine владеет memo-таблицей: хэш каждого job вычисляется один раз
// и переиспользуется при повторных запросах (в том числе транзитивных —
// через downstream jobs). Таблица заполняется монотонно и не очищается;
// экземпляр Engine живёт в рамках одного запуска.
//
// Ключ memo-таблицы — сам job, не его ID: jobs разных графов с
// совпадающими ID остаются различимы, один Engine можно безопасно
// использовать для нескольких графов.
//
// Конкурентные вызовы безопасны: на каждый job действует single-flight
// дисциплина — не более одного вычисления, остальные ждут результата.
type Engine struct {
	version string

	mu   sync.Mutex
	memo map[*graph.Job]*memoEntry
}

// memoEntry — запись memo-таблицы: absent / in-flight / complete.
// Пока done открыт, вычисление в полёте; после close валидны digest и err.
type memoEntry struct {
	done   chan struct{}
	digest string
	err    error
}

// New создаёт Engine с текущей версией алгоритма.
func New() *Engine {
	return NewWithVersion(Version)
}

// NewWithVersion создаёт Engine с явной версией алгоритма.
// Используется в тестах и при миграции кэша.
func NewWithVersion(version string) *Engine {
	return &Engine{
		version: version,
		memo:    make(map[*graph.Job]*memoEntry),
	}
}

// AlgoVersion возвращает версию алгоритма этого Engine.
func (e *Engine) AlgoVersion() string {
	return e.version
}

// ProvenanceHash вычисляет versioned provenance-хэш для job.
//
// Двухслойный digest: внутренний хэш покрывает содержимое job и всю
// его upstream-линию, внешний slой примешивает версию алгоритма.
func (e *Engine) ProvenanceHash(job *graph.Job) (string, error) {
	inner, err := e.digest(job)
	if err != nil {
		return "", err
	}

	versioned := sha256.New()
	versioned.Write([]byte(inner))
	versioned.Write([]byte(e.version))
	return hex.EncodeToString(versioned.Sum(nil)), nil
}

// frame — кадр явного стека обхода.
type frame struct {
	job      *graph.Job
	entry    *memoEntry // non-nil, если мы владеем вычислением этого job
	expanded bool       // зависимости уже помещены в стек
}

// digest вычисляет внутренний (unversioned) хэш job.
//
// Обход — явный post-order стек вместо рекурсии: глубина графа
// не ограничена глубиной стека вызовов. Зависимости job полностью
// хэшируются до самого job. На циклическом графе поведение не
// определено — ацикличность гарантирует graph.Build.
func (e *Engine) digest(job *graph.Job) (string, error) {
	stack := []*frame{{job: job}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		// Claim: либо мы владеем вычислением, либо ждём чужое
		if f.entry == nil && !f.expanded {
			entry, owner := e.claim(f.job)
			if !owner {
				telemetry.HashMemoHits.Inc()
				<-entry.done
				if entry.err != nil {
					e.abort(stack[:len(stack)-1], entry.err)
					return "", entry.err
				}
				stack = stack[:len(stack)-1]
				continue
			}
			f.entry = entry
		}

		// Сначала в стек отправляются все upstream jobs
		if !f.expanded {
			f.expanded = true
			deps := f.job.Dependencies()
			if len(deps) > 0 {
				for dep := range deps {
					stack = append(stack, &frame{job: dep})
				}
				continue
			}
		}

		// Все зависимости готовы — хэшируем сам job
		digest, err := e.jobDigest(f.job)
		f.entry.digest = digest
		f.entry.err = err
		close(f.entry.done)

		stack = stack[:len(stack)-1]
		if err != nil {
			e.abort(stack, err)
			return "", err
		}
	}

	return e.lookup(job)
}

// claim возвращает memo-запись для job.
// owner=true означает, что запись создана нами и мы обязаны её разрешить.
func (e *Engine) claim(job *graph.Job) (entry *memoEntry, owner bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.memo[job]; ok {
		return entry, false
	}

	entry = &memoEntry{done: make(chan struct{})}
	e.memo[job] = entry
	return entry, true
}

// lookup возвращает завершённый результат из memo-таблицы.
func (e *Engine) lookup(job *graph.Job) (string, error) {
	e.mu.Lock()
	entry := e.memo[job]
	e.mu.Unlock()

	if entry == nil {
		return "", fmt.Errorf("no memo entry for job %s", job.ID)
	}
	<-entry.done
	return entry.digest, entry.err
}

// abort разрешает все принадлежащие нам незавершённые записи стека
// ошибкой: digest downstream job не может быть завершён, если упал
// любой из его upstream.
func (e *Engine) abort(stack []*frame, err error) {
	for _, f := range stack {
		if f.entry == nil {
			continue
		}
		f.entry.err = err
		close(f.entry.done)
		f.entry = nil
	}
}

// jobDigest вычисляет хэш одного job; хэши всех его зависимостей
// к этому моменту уже лежат в memo-таблице.
func (e *Engine) jobDigest(job *graph.Job) (string, error) {
	// Per-output хэш без материализации выходов невозможен
	if len(job.Def.Outputs) > 1 {
		return "", &HashError{
			JobID:   job.ID,
			Message: "cannot hash job with more than one output file",
			Err:     ErrMultipleOutputs,
		}
	}

	h := sha256.New()

	// 1. Execution descriptor: сырой текст команды или источника.
	// Отрендеренная команда не годится — в неё подставляются потоки,
	// ресурсы и имена файлов, которые не должны влиять на хэш.
	switch job.Exec.Kind {
	case graph.ExecNone:
	case graph.ExecCommand, graph.ExecScript, graph.ExecWrapper:
		h.Write([]byte(job.Exec.Source))
	default:
		return "", &HashError{
			JobID:   job.ID,
			Message: fmt.Sprintf("unknown execution descriptor kind %d", job.Exec.Kind),
			Err:     ErrUnknownExecKind,
		}
	}

	// 2. Параметры: по ключам в возрастающем лексикографическом порядке,
	// значения — в канонической JSON-форме
	keys := make([]string, 0, len(job.Def.Params))
	for k := range job.Def.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		h.Write([]byte(k))
		enc, err := canonicalValue(job.Def.Params[k])
		if err != nil {
			return "", &HashError{
				JobID:   job.ID,
				Message: fmt.Sprintf("cannot serialize param %q: %v", k, err),
				Err:     ErrUnhashableParam,
			}
		}
		h.Write(enc)
	}

	// 3. Внешние входные файлы: inputs, не производимые upstream jobs.
	// Внутренние inputs пропускаются — их влияние уже учтено
	// транзитивно через хэш производящего job
	deps := job.Dependencies()
	for _, in := range job.Def.Inputs {
		if suppliedByUpstream(deps, in) {
			continue
		}
		if err := hashFile(h, in); err != nil {
			return "", &HashError{
				JobID:   job.ID,
				Message: fmt.Sprintf("read input %s: %v", in, err),
				Err:     ErrInputRead,
			}
		}
	}

	// 4. Окружение. Порядок ветвей фиксирован: env-спецификация имеет
	// приоритет, container reference примешивается перед её содержимым
	settings := job.Graph().Settings
	env := job.Def.Env
	switch {
	case settings.UseEnv && env != nil && env.Content != "":
		if settings.UseContainer && env.Container != "" {
			h.Write([]byte(env.Container))
		}
		h.Write([]byte(env.Content))
	case settings.UseContainer && env != nil && env.Container != "":
		h.Write([]byte(env.Container))
	}

	// 5. Хэши upstream jobs в blockchain fashion: отсортированные
	// лексикографически, чтобы результат не зависел от порядка
	// итерации по множеству зависимостей
	depDigests := make([]string, 0, len(deps))
	for dep := range deps {
		d, err := e.lookup(dep)
		if err != nil {
			return "", err
		}
		depDigests = append(depDigests, d)
	}
	sort.Strings(depDigests)
	for _, d := range depDigests {
		h.Write([]byte(d))
	}

	telemetry.HashesComputed.Inc()
	return hex.EncodeToString(h.Sum(nil)), nil
}

// suppliedByUpstream проверяет, поставляется ли входной файл
// каким-либо upstream job.
func suppliedByUpstream(deps map[*graph.Job]graph.FileSet, path string) bool {
	for _, files := range deps {
		if files.Contains(path) {
			return true
		}
	}
	return false
}

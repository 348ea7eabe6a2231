package graph

import (
	"github.com/shaiso/Lineage/internal/domain"
)

// FileSet — множество путей к файлам.
type FileSet map[string]struct{}

// Contains проверяет наличие файла в множестве.
func (s FileSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

// add добавляет файл в множество.
func (s FileSet) add(path string) {
	s[path] = struct{}{}
}

// Job — узел task-графа.
//
// Job создаётся из JobDef при построении графа: execution descriptor
// к этому моменту уже разрешён (источник script/wrapper прочитан с диска).
// Job хранит back-reference на граф только для поиска зависимостей.
type Job struct {
	// ID — идентификатор job (уникален в рамках графа).
	ID string

	// Def — определение job из WorkflowSpec.
	Def *domain.JobDef

	// Exec — разрешённый execution descriptor.
	Exec ExecSpec

	graph *Graph
}

// Graph возвращает граф, которому принадлежит job.
func (j *Job) Graph() *Graph {
	return j.graph
}

// Dependencies возвращает upstream jobs этого job и файлы,
// которые каждый из них поставляет в его inputs.
func (j *Job) Dependencies() map[*Job]FileSet {
	return j.graph.Dependencies(j)
}

// Graph — направленный ациклический task-граф.
type Graph struct {
	// Jobs — все jobs графа (jobID → Job).
	Jobs map[string]*Job

	// Settings — глобальные настройки workflow.
	Settings domain.Settings

	// Name — имя workflow.
	Name string

	// Order — топологически отсортированный список jobs.
	Order []*Job

	// deps — jobID → (upstream job → поставляемые им файлы).
	deps map[string]map[*Job]FileSet

	// downstream — jobID → jobs, зависящие от него.
	downstream map[string][]*Job
}

// Build строит граф из WorkflowSpec.
//
// Этапы:
//  1. Валидация спецификации
//  2. Разрешение execution descriptors (чтение script/wrapper с диска)
//  3. Построение producer-индекса (output файл → производящий job)
//  4. Вывод зависимостей из пересечения inputs/outputs
//  5. Топологическая сортировка (отклоняет циклы)
func Build(spec *domain.WorkflowSpec) (*Graph, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	g := &Graph{
		Jobs:       make(map[string]*Job),
		Name:       spec.Name,
		deps:       make(map[string]map[*Job]FileSet),
		downstream: make(map[string][]*Job),
	}
	if spec.Settings != nil {
		g.Settings = *spec.Settings
	}

	// Создаём jobs и разрешаем execution descriptors
	for i := range spec.Jobs {
		def := &spec.Jobs[i]

		exec, err := resolveExec(def, g.Settings)
		if err != nil {
			return nil, err
		}

		g.Jobs[def.ID] = &Job{
			ID:    def.ID,
			Def:   def,
			Exec:  exec,
			graph: g,
		}
	}

	// Producer-индекс: какой job производит какой файл
	producers := make(map[string]*Job)
	for _, job := range g.Jobs {
		for _, out := range job.Def.Outputs {
			producers[out] = job
		}
	}

	// Выводим зависимости: input, производимый другим job — внутреннее ребро
	for _, job := range g.Jobs {
		jobDeps := make(map[*Job]FileSet)
		for _, in := range job.Def.Inputs {
			producer, ok := producers[in]
			if !ok || producer == job {
				continue
			}
			files, ok := jobDeps[producer]
			if !ok {
				files = make(FileSet)
				jobDeps[producer] = files
				g.downstream[producer.ID] = append(g.downstream[producer.ID], job)
			}
			files.add(in)
		}
		g.deps[job.ID] = jobDeps
	}

	// Проверяем на циклы и строим топологический порядок
	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	g.Order = order

	return g, nil
}

// Dependencies возвращает upstream jobs для job и поставляемые ими файлы.
func (g *Graph) Dependencies(job *Job) map[*Job]FileSet {
	return g.deps[job.ID]
}

// JobByID возвращает job по ID.
func (g *Graph) JobByID(id string) *Job {
	return g.Jobs[id]
}

// Size возвращает количество jobs в графе.
func (g *Graph) Size() int {
	return len(g.Jobs)
}

// TerminalJobs возвращает jobs без downstream зависимых (конечные цели графа).
// Порядок соответствует топологическому.
func (g *Graph) TerminalJobs() []*Job {
	terminal := make([]*Job, 0)
	for _, job := range g.Order {
		if len(g.downstream[job.ID]) == 0 {
			terminal = append(terminal, job)
		}
	}
	return terminal
}

// topologicalSort выполняет топологическую сортировку (алгоритм Кана).
// Возвращает ошибку, если обнаружен цикл.
func (g *Graph) topologicalSort() ([]*Job, error) {
	inDegree := make(map[string]int)
	for id := range g.Jobs {
		inDegree[id] = len(g.deps[id])
	}

	// Очередь jobs с inDegree = 0; для детерминизма обхода порядок
	// вставки не важен — сортировка не требуется
	queue := make([]*Job, 0)
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, g.Jobs[id])
		}
	}

	order := make([]*Job, 0, len(g.Jobs))

	for len(queue) > 0 {
		job := queue[0]
		queue = queue[1:]
		order = append(order, job)

		// Уменьшаем inDegree у downstream jobs
		for _, dependent := range g.downstream[job.ID] {
			inDegree[dependent.ID]--
			if inDegree[dependent.ID] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	// Если не все jobs обработаны — есть цикл
	if len(order) != len(g.Jobs) {
		return nil, ErrCyclicDependency
	}

	return order, nil
}

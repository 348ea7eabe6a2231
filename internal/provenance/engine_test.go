package provenance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shaiso/Lineage/internal/domain"
	"github.com/shaiso/Lineage/internal/graph"
)

// buildGraph строит граф или проваливает тест.
func buildGraph(t *testing.T, spec *domain.WorkflowSpec) *graph.Graph {
	t.Helper()
	g, err := graph.Build(spec)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

// mustHash вычисляет хэш или проваливает тест.
func mustHash(t *testing.T, e *Engine, job *graph.Job) string {
	t.Helper()
	digest, err := e.ProvenanceHash(job)
	if err != nil {
		t.Fatalf("hash job %s: %v", job.ID, err)
	}
	return digest
}

// writeInput создаёт входной файл и возвращает его путь.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProvenanceHash_Deterministic(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "data.csv", "x,y\n1,2\n")

	spec := func() *domain.WorkflowSpec {
		return &domain.WorkflowSpec{
			Jobs: []domain.JobDef{
				{
					ID:      "A",
					Command: "analyze {input}",
					Params:  map[string]any{"alpha": 0.05, "mode": "fast", "seeds": []int{1, 2, 3}},
					Inputs:  []string{input},
					Outputs: []string{"result.txt"},
				},
			},
		}
	}

	g1 := buildGraph(t, spec())
	e1 := New()

	first := mustHash(t, e1, g1.JobByID("A"))
	second := mustHash(t, e1, g1.JobByID("A"))
	if first != second {
		t.Error("repeated calls on the same engine must return the same digest")
	}

	// Независимый engine и независимо построенный граф дают тот же digest
	g2 := buildGraph(t, spec())
	e2 := New()
	if got := mustHash(t, e2, g2.JobByID("A")); got != first {
		t.Errorf("independent engine returned %s, want %s", got, first)
	}

	// 64 hex-символа (sha256)
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}
}

func TestProvenanceHash_RenameAndResourcesIrrelevant(t *testing.T) {
	// Переименование job и смена threads/resources не меняют digest:
	// в хэш попадает только семантика
	specA := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "echo hi", Threads: 1},
		},
	}
	specB := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{
				ID:        "renamed",
				Name:      "totally different",
				Command:   "echo hi",
				Threads:   32,
				Resources: map[string]int{"memory_mb": 64000},
			},
		},
	}

	hashA := mustHash(t, New(), buildGraph(t, specA).JobByID("A"))
	hashB := mustHash(t, New(), buildGraph(t, specB).JobByID("renamed"))

	if hashA != hashB {
		t.Error("digest must not depend on job ID, name, threads or resources")
	}
}

func TestProvenanceHash_CommandSensitive(t *testing.T) {
	hashFor := func(cmd string) string {
		g := buildGraph(t, &domain.WorkflowSpec{
			Jobs: []domain.JobDef{{ID: "A", Command: cmd}},
		})
		return mustHash(t, New(), g.JobByID("A"))
	}

	if hashFor("echo hi") == hashFor("echo bye") {
		t.Error("different commands must yield different digests")
	}
}

func TestProvenanceHash_ParamsSensitive(t *testing.T) {
	hashFor := func(params map[string]any) string {
		g := buildGraph(t, &domain.WorkflowSpec{
			Jobs: []domain.JobDef{{ID: "A", Command: "run", Params: params}},
		})
		return mustHash(t, New(), g.JobByID("A"))
	}

	base := hashFor(map[string]any{"alpha": 0.05, "mode": "fast"})

	if base == hashFor(map[string]any{"alpha": 0.01, "mode": "fast"}) {
		t.Error("changed param value must change the digest")
	}
	if base == hashFor(map[string]any{"alpha": 0.05}) {
		t.Error("removed param must change the digest")
	}
	if base != hashFor(map[string]any{"mode": "fast", "alpha": 0.05}) {
		t.Error("param declaration order must not matter")
	}
}

func TestProvenanceHash_ExternalInputSensitive(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "data.txt", "original")

	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "run", Inputs: []string{input}},
		},
	}
	g := buildGraph(t, spec)

	before := mustHash(t, New(), g.JobByID("A"))

	writeInput(t, dir, "data.txt", "modified")
	after := mustHash(t, New(), g.JobByID("A"))

	if before == after {
		t.Error("changed external input content must change the digest")
	}
}

func TestProvenanceHash_LargeInputBlocks(t *testing.T) {
	// Файл больше одного блока чтения хэшируется целиком
	dir := t.TempDir()
	big := make([]byte, hashBlockSize*3+17)
	for i := range big {
		big[i] = byte(i % 251)
	}
	input := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(input, big, 0o644); err != nil {
		t.Fatal(err)
	}

	spec := func() *domain.WorkflowSpec {
		return &domain.WorkflowSpec{
			Jobs: []domain.JobDef{{ID: "A", Command: "run", Inputs: []string{input}}},
		}
	}

	before := mustHash(t, New(), buildGraph(t, spec()).JobByID("A"))

	// Меняем последний байт (за границей целых блоков)
	big[len(big)-1] ^= 0xff
	if err := os.WriteFile(input, big, 0o644); err != nil {
		t.Fatal(err)
	}

	after := mustHash(t, New(), buildGraph(t, spec()).JobByID("A"))
	if before == after {
		t.Error("tail bytes of a multi-block input must affect the digest")
	}
}

func TestProvenanceHash_EnvironmentPrecedence(t *testing.T) {
	env := &domain.EnvDef{
		Content:   "channels:\n  - main\ndependencies:\n  - tool=1.0\n",
		Container: "docker://ubuntu:24.04",
	}

	hashFor := func(settings *domain.Settings, env *domain.EnvDef) string {
		g := buildGraph(t, &domain.WorkflowSpec{
			Settings: settings,
			Jobs:     []domain.JobDef{{ID: "A", Command: "run", Env: env}},
		})
		return mustHash(t, New(), g.JobByID("A"))
	}

	both := hashFor(&domain.Settings{UseEnv: true, UseContainer: true}, env)
	envOnly := hashFor(&domain.Settings{UseEnv: true}, env)
	containerOnly := hashFor(&domain.Settings{UseContainer: true}, env)
	neither := hashFor(nil, env)
	noEnv := hashFor(nil, nil)

	// Все активные варианты дают разные digests
	if both == envOnly || both == containerOnly || envOnly == containerOnly {
		t.Error("environment activation variants must yield distinct digests")
	}

	// Неактивное окружение эквивалентно его отсутствию
	if neither != noEnv {
		t.Error("declared but inactive environment must not affect the digest")
	}
}

func TestProvenanceHash_UpstreamChangePropagates(t *testing.T) {
	spec := func(cmdA string) *domain.WorkflowSpec {
		return &domain.WorkflowSpec{
			Jobs: []domain.JobDef{
				{ID: "A", Command: cmdA, Outputs: []string{"a.txt"}},
				{ID: "B", Command: "transform", Inputs: []string{"a.txt"}, Outputs: []string{"b.txt"}},
			},
		}
	}

	g1 := buildGraph(t, spec("echo hi"))
	g2 := buildGraph(t, spec("echo bye"))

	b1 := mustHash(t, New(), g1.JobByID("B"))
	b2 := mustHash(t, New(), g2.JobByID("B"))

	// Собственные поля B не менялись, но digest A течёт сквозь B
	if b1 == b2 {
		t.Error("upstream change must propagate to downstream digests")
	}
}

func TestProvenanceHash_InternalInputExcluded(t *testing.T) {
	dir := t.TempDir()
	internal := filepath.Join(dir, "a.txt")

	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "gen", Outputs: []string{internal}},
			{ID: "B", Command: "use", Inputs: []string{internal}, Outputs: []string{filepath.Join(dir, "b.txt")}},
		},
	}
	g := buildGraph(t, spec)

	// Файл не существует — хэш вычисляется: внутренний input не читается
	before := mustHash(t, New(), g.JobByID("B"))

	// Появление и изменение файла не влияют на digest B напрямую
	writeInput(t, dir, "a.txt", "materialized content")
	after := mustHash(t, New(), g.JobByID("B"))

	if before != after {
		t.Error("internal input content must not feed the digest directly")
	}
}

func TestProvenanceHash_SameIDAcrossGraphs(t *testing.T) {
	// Jobs разных графов с совпадающим ID — разные jobs:
	// memo-таблица ключуется самим job, а не его ID
	g1 := buildGraph(t, &domain.WorkflowSpec{
		Jobs: []domain.JobDef{{ID: "A", Command: "echo hi"}},
	})
	g2 := buildGraph(t, &domain.WorkflowSpec{
		Jobs: []domain.JobDef{{ID: "A", Command: "echo bye"}},
	})

	engine := New()
	h1 := mustHash(t, engine, g1.JobByID("A"))
	h2 := mustHash(t, engine, g2.JobByID("A"))

	if h1 == h2 {
		t.Error("shared engine must distinguish same-ID jobs of different graphs")
	}

	// Общий engine даёт те же digests, что и независимые
	if got := mustHash(t, New(), g1.JobByID("A")); got != h1 {
		t.Errorf("g1 digest via shared engine = %s, want %s", h1, got)
	}
	if got := mustHash(t, New(), g2.JobByID("A")); got != h2 {
		t.Errorf("g2 digest via shared engine = %s, want %s", h2, got)
	}
}

func TestProvenanceHash_DiamondMemoization(t *testing.T) {
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Outputs: []string{"a.txt"}},
			{ID: "B", Command: "b", Inputs: []string{"a.txt"}, Outputs: []string{"b.txt"}},
			{ID: "C", Command: "c", Inputs: []string{"a.txt"}, Outputs: []string{"c.txt"}},
			{ID: "D", Command: "d", Inputs: []string{"b.txt", "c.txt"}, Outputs: []string{"d.txt"}},
		},
	}
	g := buildGraph(t, spec)

	fresh := New()
	viaFresh := mustHash(t, fresh, g.JobByID("D"))

	// Один заход на D заполняет memo для всех четырёх jobs
	if len(fresh.memo) != 4 {
		t.Errorf("expected 4 memo entries after hashing D, got %d", len(fresh.memo))
	}

	// Engine, уже посетивший A, B, C, даёт тот же digest для D
	warm := New()
	mustHash(t, warm, g.JobByID("A"))
	mustHash(t, warm, g.JobByID("B"))
	mustHash(t, warm, g.JobByID("C"))
	if got := mustHash(t, warm, g.JobByID("D")); got != viaFresh {
		t.Errorf("warm engine returned %s, want %s", got, viaFresh)
	}
}

func TestProvenanceHash_VersionInvalidatesAll(t *testing.T) {
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Outputs: []string{"a.txt"}},
			{ID: "B", Command: "b", Inputs: []string{"a.txt"}},
		},
	}
	g := buildGraph(t, spec)

	v1 := NewWithVersion("0.1")
	v2 := NewWithVersion("0.2")

	for _, id := range []string{"A", "B"} {
		if mustHash(t, v1, g.JobByID(id)) == mustHash(t, v2, g.JobByID(id)) {
			t.Errorf("version bump must change digest of job %s", id)
		}
	}
}

func TestProvenanceHash_MultipleOutputs(t *testing.T) {
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Outputs: []string{"x.txt", "y.txt"}},
		},
	}
	g := buildGraph(t, spec)

	_, err := New().ProvenanceHash(g.JobByID("A"))
	if !errors.Is(err, ErrMultipleOutputs) {
		t.Errorf("expected ErrMultipleOutputs, got %v", err)
	}

	var herr *HashError
	if !errors.As(err, &herr) || herr.JobID != "A" {
		t.Errorf("expected HashError for job A, got %v", err)
	}
}

func TestProvenanceHash_MultipleOutputsPropagates(t *testing.T) {
	// Ошибка upstream job делает невычислимым и downstream digest
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Outputs: []string{"x.txt", "y.txt"}},
			{ID: "B", Command: "b", Inputs: []string{"x.txt"}, Outputs: []string{"b.txt"}},
		},
	}
	g := buildGraph(t, spec)

	_, err := New().ProvenanceHash(g.JobByID("B"))
	if !errors.Is(err, ErrMultipleOutputs) {
		t.Errorf("expected upstream ErrMultipleOutputs, got %v", err)
	}
}

func TestProvenanceHash_UnhashableParam(t *testing.T) {
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Params: map[string]any{"bad": make(chan int)}},
		},
	}
	g := buildGraph(t, spec)

	_, err := New().ProvenanceHash(g.JobByID("A"))
	if !errors.Is(err, ErrUnhashableParam) {
		t.Errorf("expected ErrUnhashableParam, got %v", err)
	}
}

func TestProvenanceHash_MissingExternalInput(t *testing.T) {
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Inputs: []string{filepath.Join(t.TempDir(), "absent.txt")}},
		},
	}
	g := buildGraph(t, spec)

	_, err := New().ProvenanceHash(g.JobByID("A"))
	if !errors.Is(err, ErrInputRead) {
		t.Errorf("expected ErrInputRead, got %v", err)
	}
}

func TestProvenanceHash_Concurrent(t *testing.T) {
	spec := &domain.WorkflowSpec{
		Jobs: []domain.JobDef{
			{ID: "A", Command: "a", Outputs: []string{"a.txt"}},
			{ID: "B", Command: "b", Inputs: []string{"a.txt"}, Outputs: []string{"b.txt"}},
			{ID: "C", Command: "c", Inputs: []string{"a.txt"}, Outputs: []string{"c.txt"}},
			{ID: "D", Command: "d", Inputs: []string{"b.txt", "c.txt"}},
		},
	}
	g := buildGraph(t, spec)

	engine := New()
	want := mustHash(t, New(), g.JobByID("D"))

	const workers = 8
	results := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.ProvenanceHash(g.JobByID("D"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != want {
			t.Errorf("worker %d returned %s, want %s", i, results[i], want)
		}
	}
}

func TestProvenanceHash_DeepChain(t *testing.T) {
	// Явный стек обхода: глубина графа не упирается в глубину рекурсии
	const depth = 2000

	spec := func() *domain.WorkflowSpec {
		jobs := make([]domain.JobDef, depth)
		for i := 0; i < depth; i++ {
			jobs[i] = domain.JobDef{
				ID:      fmt.Sprintf("job-%d", i),
				Command: fmt.Sprintf("step %d", i),
				Outputs: []string{fmt.Sprintf("f%d.txt", i)},
			}
			if i > 0 {
				jobs[i].Inputs = []string{fmt.Sprintf("f%d.txt", i-1)}
			}
		}
		return &domain.WorkflowSpec{Jobs: jobs}
	}

	last := fmt.Sprintf("job-%d", depth-1)

	first := mustHash(t, New(), buildGraph(t, spec()).JobByID(last))
	second := mustHash(t, New(), buildGraph(t, spec()).JobByID(last))

	if first != second {
		t.Error("deep chain digest must be deterministic")
	}
}

func TestProvenanceHash_NoExecDescriptor(t *testing.T) {
	withCmd := buildGraph(t, &domain.WorkflowSpec{
		Jobs: []domain.JobDef{{ID: "A", Command: "echo hi"}},
	})
	without := buildGraph(t, &domain.WorkflowSpec{
		Jobs: []domain.JobDef{{ID: "A"}},
	})

	a := mustHash(t, New(), withCmd.JobByID("A"))
	b := mustHash(t, New(), without.JobByID("A"))

	if a == b {
		t.Error("job without execution descriptor must hash differently")
	}
}

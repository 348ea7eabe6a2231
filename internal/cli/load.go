package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shaiso/Lineage/internal/domain"
	"github.com/shaiso/Lineage/internal/graph"
)

// LoadWorkflow читает workflow-файл и строит task-граф.
// Если имя workflow не задано в спецификации, используется имя файла.
func LoadWorkflow(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}

	var spec domain.WorkflowSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse workflow file: %w", err)
	}

	if spec.Name == "" {
		base := filepath.Base(path)
		spec.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	g, err := graph.Build(&spec)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}

// selectJobs возвращает jobs для хэширования: запрошенные по ID,
// все jobs (--all) либо terminal jobs по умолчанию.
func selectJobs(g *graph.Graph, ids []string, all bool) ([]*graph.Job, error) {
	if len(ids) > 0 {
		jobs := make([]*graph.Job, 0, len(ids))
		for _, id := range ids {
			job := g.JobByID(id)
			if job == nil {
				return nil, fmt.Errorf("job not found: %s", id)
			}
			jobs = append(jobs, job)
		}
		return jobs, nil
	}

	if all {
		return g.Order, nil
	}
	return g.TerminalJobs(), nil
}

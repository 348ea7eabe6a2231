package graph

import (
	"fmt"

	"github.com/shaiso/Lineage/internal/domain"
)

// Validate выполняет полную валидацию WorkflowSpec.
//
// Проверяет:
// - Наличие jobs
// - Уникальность ID jobs
// - Взаимоисключимость command/script/wrapper
// - Что каждый output производится ровно одним job
//
// Ацикличность проверяется отдельно при построении графа (Build).
func Validate(spec *domain.WorkflowSpec) error {
	if spec == nil || len(spec.Jobs) == 0 {
		return ErrEmptyJobs
	}

	jobIDs := make(map[string]bool)
	producers := make(map[string]string) // output файл → ID производящего job

	for i := range spec.Jobs {
		def := &spec.Jobs[i]

		if err := validateJob(def, jobIDs); err != nil {
			return err
		}

		for _, out := range def.Outputs {
			if prev, ok := producers[out]; ok {
				return NewValidationError(def.ID, "outputs",
					fmt.Sprintf("output %s already produced by job %s", out, prev),
					ErrDuplicateOutput)
			}
			producers[out] = def.ID
		}
	}

	return nil
}

// validateJob валидирует один job.
// jobIDs — уже встреченные ID (для проверки уникальности).
func validateJob(def *domain.JobDef, jobIDs map[string]bool) error {
	if def.ID == "" {
		return NewValidationError("", "id", "job has empty ID", ErrEmptyJobID)
	}

	if jobIDs[def.ID] {
		return NewValidationError(def.ID, "id",
			fmt.Sprintf("duplicate job ID: %s", def.ID), ErrDuplicateJobID)
	}
	jobIDs[def.ID] = true

	// command/script/wrapper взаимоисключимы
	set := 0
	if def.Command != "" {
		set++
	}
	if def.Script != "" {
		set++
	}
	if def.Wrapper != "" {
		set++
	}
	if set > 1 {
		return NewValidationError(def.ID, "exec",
			"command, script and wrapper are mutually exclusive", ErrAmbiguousExec)
	}

	return nil
}

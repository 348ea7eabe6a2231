package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// graphRow — строка описания job для JSON-вывода.
type graphRow struct {
	JobID     string   `json:"job_id"`
	Exec      string   `json:"exec"`
	DependsOn []string `json:"depends_on,omitempty"`
	Inputs    []string `json:"inputs,omitempty"`
	Outputs   []string `json:"outputs,omitempty"`
}

// NewGraphCmd создаёт команду graph.
func NewGraphCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "graph WORKFLOW_FILE",
		Short: "Show the task graph in topological order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			g, err := LoadWorkflow(args[0])
			if err != nil {
				return err
			}

			data := make([]graphRow, 0, g.Size())
			for _, job := range g.Order {
				deps := make([]string, 0)
				for dep := range job.Dependencies() {
					deps = append(deps, dep.ID)
				}
				sort.Strings(deps)

				data = append(data, graphRow{
					JobID:     job.ID,
					Exec:      job.Exec.Kind.String(),
					DependsOn: deps,
					Inputs:    job.Def.Inputs,
					Outputs:   job.Def.Outputs,
				})
			}

			headers := []string{"JOB", "EXEC", "DEPENDS_ON", "OUTPUTS"}
			rows := make([][]string, len(data))
			for i, r := range data {
				rows[i] = []string{
					r.JobID,
					r.Exec,
					strings.Join(r.DependsOn, ","),
					strings.Join(r.Outputs, ","),
				}
			}

			out.Print(headers, rows, data)
			return nil
		},
	}
}

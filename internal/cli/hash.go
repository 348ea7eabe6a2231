package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Lineage/internal/domain"
	"github.com/shaiso/Lineage/internal/mq"
	"github.com/shaiso/Lineage/internal/provenance"
	"github.com/shaiso/Lineage/internal/repo"
)

// hashResult — результат хэширования одного job (для JSON-вывода).
type hashResult struct {
	Workflow    string `json:"workflow"`
	JobID       string `json:"job_id"`
	Digest      string `json:"digest"`
	AlgoVersion string `json:"algo_version"`
}

// NewHashCmd создаёт команду hash.
func NewHashCmd(outputFn func() *Output) *cobra.Command {
	var jobIDs []string
	var all bool
	var record bool
	var publish bool

	cmd := &cobra.Command{
		Use:   "hash WORKFLOW_FILE",
		Short: "Compute provenance hashes for jobs of a workflow",
		Long: `Compute versioned provenance hashes for jobs of a workflow.

By default hashes are computed for terminal jobs (jobs nothing depends on);
upstream jobs are hashed transitively. Use --job to select specific jobs
or --all to hash every job of the graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			g, err := LoadWorkflow(args[0])
			if err != nil {
				return err
			}

			jobs, err := selectJobs(g, jobIDs, all)
			if err != nil {
				return err
			}

			engine := provenance.New()
			results := make([]hashResult, 0, len(jobs))
			for _, job := range jobs {
				digest, err := engine.ProvenanceHash(job)
				if err != nil {
					return fmt.Errorf("hash job %s: %w", job.ID, err)
				}
				results = append(results, hashResult{
					Workflow:    g.Name,
					JobID:       job.ID,
					Digest:      digest,
					AlgoVersion: engine.AlgoVersion(),
				})
			}

			ctx := cmd.Context()
			if record {
				if err := recordResults(ctx, results); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("%d record(s) written to index", len(results)))
			}
			if publish {
				if err := publishResults(ctx, results); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("%d event(s) published", len(results)))
			}

			headers := []string{"JOB", "DIGEST", "ALGO"}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.JobID, r.Digest, r.AlgoVersion}
			}
			out.Print(headers, rows, results)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&jobIDs, "job", nil, "Job ID to hash (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Hash every job of the graph")
	cmd.Flags().BoolVar(&record, "record", false, "Write digests to the provenance index (DB_URL)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish hash.recorded events (RABBITMQ_URL)")

	return cmd
}

// recordResults пишет результаты напрямую в индекс.
func recordResults(ctx context.Context, results []hashResult) error {
	pool, err := repo.NewPool(ctx)
	if err != nil {
		return fmt.Errorf("connect to index: %w", err)
	}
	defer pool.Close()

	records := repo.NewRecordRepo(pool)
	for _, r := range results {
		rec := &domain.HashRecord{
			ID:          uuid.New(),
			Workflow:    r.Workflow,
			JobID:       r.JobID,
			Digest:      r.Digest,
			AlgoVersion: r.AlgoVersion,
			ComputedAt:  time.Now(),
		}
		if err := records.Create(ctx, rec); err != nil && !errors.Is(err, repo.ErrAlreadyExists) {
			return fmt.Errorf("record %s: %w", r.JobID, err)
		}
	}
	return nil
}

// publishResults публикует события hash.recorded.
func publishResults(ctx context.Context, results []hashResult) error {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = mq.DefaultURL()
	}

	conn, err := mq.NewConnection(url, slog.Default())
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	if err := mq.SetupTopology(conn); err != nil {
		return fmt.Errorf("setup topology: %w", err)
	}

	publisher := mq.NewPublisher(conn, slog.Default())
	for _, r := range results {
		rec := &domain.HashRecord{
			Workflow:    r.Workflow,
			JobID:       r.JobID,
			Digest:      r.Digest,
			AlgoVersion: r.AlgoVersion,
			ComputedAt:  time.Now(),
		}
		if err := publisher.PublishHashRecorded(ctx, rec); err != nil {
			return fmt.Errorf("publish %s: %w", r.JobID, err)
		}
	}
	return nil
}

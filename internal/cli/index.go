package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Lineage/internal/repo"
)

// NewIndexCmd создаёт группу команд для работы с индексом хэшей.
// Команды подключаются к БД напрямую (DB_URL).
func NewIndexCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Query the provenance hash index",
	}

	cmd.AddCommand(
		newIndexListCmd(outputFn),
		newIndexShowCmd(outputFn),
		newIndexPurgeCmd(outputFn),
	)

	return cmd
}

func newIndexListCmd(outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list WORKFLOW",
		Short: "List index records for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()

			pool, err := repo.NewPool(ctx)
			if err != nil {
				return fmt.Errorf("connect to index: %w", err)
			}
			defer pool.Close()

			records, err := repo.NewRecordRepo(pool).ListByWorkflow(ctx, args[0], limit)
			if err != nil {
				return err
			}

			headers := []string{"JOB", "DIGEST", "ALGO", "COMPUTED"}
			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = []string{
					r.JobID,
					r.Digest,
					r.AlgoVersion,
					r.ComputedAt.Format("2006-01-02 15:04:05"),
				}
			}

			out.Print(headers, rows, records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of records")

	return cmd
}

func newIndexShowCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show DIGEST",
		Short: "Show the index record for a digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()

			pool, err := repo.NewPool(ctx)
			if err != nil {
				return fmt.Errorf("connect to index: %w", err)
			}
			defer pool.Close()

			rec, err := repo.NewRecordRepo(pool).GetByDigest(ctx, args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"WORKFLOW", "JOB", "DIGEST", "ALGO", "COMPUTED"},
				[][]string{{
					rec.Workflow,
					rec.JobID,
					rec.Digest,
					rec.AlgoVersion,
					rec.ComputedAt.Format("2006-01-02 15:04:05"),
				}},
				rec,
			)
			return nil
		},
	}
}

func newIndexPurgeCmd(outputFn func() *Output) *cobra.Command {
	var algoVersion string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all index records computed with an algorithm version",
		Long: `Delete all index records computed with the given algorithm version.

Use after bumping the hashing algorithm version: digests computed with
the old version can never match new ones and only occupy space.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()

			pool, err := repo.NewPool(ctx)
			if err != nil {
				return fmt.Errorf("connect to index: %w", err)
			}
			defer pool.Close()

			deleted, err := repo.NewRecordRepo(pool).DeleteByVersion(ctx, algoVersion)
			if err != nil {
				return err
			}

			out.Success(strconv.FormatInt(deleted, 10) + " record(s) deleted")
			return nil
		},
	}

	cmd.Flags().StringVar(&algoVersion, "algo-version", "", "Algorithm version to purge (required)")
	cmd.MarkFlagRequired("algo-version")

	return cmd
}

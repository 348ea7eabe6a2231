package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Lineage/internal/cache"
	"github.com/shaiso/Lineage/internal/graph"
	"github.com/shaiso/Lineage/internal/provenance"
)

// NewCacheCmd создаёт группу команд для работы с локальным кэшем.
func NewCacheCmd(outputFn func() *Output) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local artifact cache",
	}

	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "",
		"Cache root (default: $LINEAGE_CACHE or ~/.lineage/cache)")

	cacheFn := func() *cache.Cache {
		root := cacheDir
		if root == "" {
			root = cache.DefaultRoot()
		}
		return cache.New(root, slog.Default())
	}

	cmd.AddCommand(
		newCacheStoreCmd(cacheFn, outputFn),
		newCacheFetchCmd(cacheFn, outputFn),
		newCacheStatusCmd(cacheFn, outputFn),
	)

	return cmd
}

// singleOutput возвращает единственный output job'а.
func singleOutput(job *graph.Job) (string, error) {
	if len(job.Def.Outputs) != 1 {
		return "", fmt.Errorf("job %s: caching requires exactly one output, got %d",
			job.ID, len(job.Def.Outputs))
	}
	return job.Def.Outputs[0], nil
}

func newCacheStoreCmd(cacheFn func() *cache.Cache, outputFn func() *Output) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "store WORKFLOW_FILE",
		Short: "Store a job's output file in the cache under its provenance hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			g, err := LoadWorkflow(args[0])
			if err != nil {
				return err
			}
			job := g.JobByID(jobID)
			if job == nil {
				return fmt.Errorf("job not found: %s", jobID)
			}

			output, err := singleOutput(job)
			if err != nil {
				return err
			}

			digest, err := provenance.New().ProvenanceHash(job)
			if err != nil {
				return fmt.Errorf("hash job %s: %w", job.ID, err)
			}

			if err := cacheFn().Store(digest, output); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Stored %s as %s", output, digest))
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job ID (required)")
	cmd.MarkFlagRequired("job")

	return cmd
}

func newCacheFetchCmd(cacheFn func() *cache.Cache, outputFn func() *Output) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "fetch WORKFLOW_FILE",
		Short: "Fetch a job's output file from the cache into its declared path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			g, err := LoadWorkflow(args[0])
			if err != nil {
				return err
			}
			job := g.JobByID(jobID)
			if job == nil {
				return fmt.Errorf("job not found: %s", jobID)
			}

			output, err := singleOutput(job)
			if err != nil {
				return err
			}

			digest, err := provenance.New().ProvenanceHash(job)
			if err != nil {
				return fmt.Errorf("hash job %s: %w", job.ID, err)
			}

			if err := cacheFn().Fetch(digest, output); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Fetched %s from %s", output, digest))
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job ID (required)")
	cmd.MarkFlagRequired("job")

	return cmd
}

// cacheStatusRow — строка статуса кэша для JSON-вывода.
type cacheStatusRow struct {
	JobID  string `json:"job_id"`
	Digest string `json:"digest"`
	Cached bool   `json:"cached"`
}

func newCacheStatusCmd(cacheFn func() *cache.Cache, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status WORKFLOW_FILE",
		Short: "Show which jobs of a workflow have cached artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			g, err := LoadWorkflow(args[0])
			if err != nil {
				return err
			}

			c := cacheFn()
			engine := provenance.New()

			data := make([]cacheStatusRow, 0, g.Size())
			for _, job := range g.Order {
				digest, err := engine.ProvenanceHash(job)
				if err != nil {
					return fmt.Errorf("hash job %s: %w", job.ID, err)
				}

				cached, err := c.Has(digest)
				if err != nil {
					return err
				}
				data = append(data, cacheStatusRow{
					JobID:  job.ID,
					Digest: digest,
					Cached: cached,
				})
			}

			headers := []string{"JOB", "DIGEST", "CACHED"}
			rows := make([][]string, len(data))
			for i, r := range data {
				rows[i] = []string{r.JobID, r.Digest, strconv.FormatBool(r.Cached)}
			}
			out.Print(headers, rows, data)
			return nil
		},
	}
}

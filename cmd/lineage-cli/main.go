// Lineage CLI — инструмент командной строки для вычисления
// provenance-хэшей jobs в task-графе и работы с кэшем артефактов.
//
// Использование:
//
//	lineage [--json] <command> [flags]
//
// Команды:
//
//	hash   Вычисление provenance-хэшей
//	graph  Структура task-графа
//	cache  Локальный кэш артефактов
//	index  Индекс provenance-хэшей (PostgreSQL)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Lineage/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "lineage",
		Short:         "Lineage CLI — provenance hashing for task graphs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewHashCmd(outputFn),
		cli.NewGraphCmd(outputFn),
		cli.NewCacheCmd(outputFn),
		cli.NewIndexCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"bizwiz/internal/config"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags are parsed
type app struct {
	cfg       *config.Config
	out       io.Writer
	newSender senderFactory
}

func newRootCmd(out io.Writer) *cobra.Command {
	return (&app{out: out, newSender: defaultSender}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "bizwiz",
		Short: "Business-day math, bulk file reading, SQL loading, charts and report email",
		Long: `bizwiz bundles the small helpers used to build recurring business reports.

Configuration is read from an optional YAML file (--config) and then from the
environment (a .env file is loaded first):
- DATABASE_URL, BIZWIZ_DB_DRIVER (postgres|sqlite), BIZWIZ_CHUNK_SIZE, BIZWIZ_GRANT_GROUP
- BIZWIZ_READ_WORKERS, BIZWIZ_CONCAT_HOW, BIZWIZ_DATE_FORMAT, BIZWIZ_OUTPUT_DIR
- SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&configPath, "config", "bizwiz.yaml", "Path to an optional YAML config file")

	root.AddCommand(
		a.newBizdaysCmd(),
		a.newDatesCmd(),
		a.newDateDiffCmd(),
		a.newReadCmd(),
		a.newDescribeCmd(),
		a.newParquetCmd(),
		a.newDBCmd(),
		a.newChartCmd(),
		a.newEmailCmd(),
	)
	return root
}

package main

import (
	"context"

	"bizwiz/adapters/db"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func (a *app) connect(ctx context.Context) (*sqlx.DB, error) {
	return db.Connect(ctx, a.cfg.Database.Driver, a.cfg.Database.URL, a.cfg.Database.ConnTimeout)
}

func (a *app) newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Run SQL and load tables into the configured database",
		Long: `Commands that talk to the database named by DATABASE_URL (or database.url in
the config file). SQL arguments may be literal text or a path to a .sql file.`,
	}

	exec := &cobra.Command{
		Use:   "exec sql|file.sql",
		Short: "Execute a statement, or every statement of a .sql file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := db.ExecuteQuery(cmd.Context(), conn, args[0])
			if err != nil {
				return err
			}
			a.success("Executed %d statement(s)", n)
			return nil
		},
	}

	var out string
	var limit int
	query := &cobra.Command{
		Use:   "query sql|file.sql",
		Short: "Run a query and print or save its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			df, err := db.Query(cmd.Context(), conn, args[0])
			if err != nil {
				return err
			}
			return a.emit(df, out, limit)
		},
	}
	query.Flags().StringVar(&out, "out", "", "Write the result to a .csv, .xlsx or .parquet file")
	query.Flags().IntVar(&limit, "limit", defaultPreviewRows, "Rows to print; 0 prints all")

	var grantGroup string
	var typed bool
	var chunkSize int
	load := &cobra.Command{
		Use:   "load file table",
		Short: "Replace a table with the contents of a CSV, Excel or Parquet file",
		Long: `Drop and recreate the table, then insert the file in chunks. Columns are
varchar unless --typed. --grant-group grants all privileges on the new table.

Example: bizwiz db load sales.xlsx sales_2024 --grant-group analysts`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			opts := db.LoadOptions{
				ChunkSize:  a.cfg.Database.ChunkSize,
				GrantGroup: a.cfg.Database.GrantGroup,
				Typed:      typed,
			}
			if chunkSize > 0 {
				opts.ChunkSize = chunkSize
			}
			if grantGroup != "" {
				opts.GrantGroup = grantGroup
			}
			n, err := db.CreateTableFromFrame(cmd.Context(), conn, df, args[1], opts)
			if err != nil {
				return err
			}
			a.success("Loaded %d row(s) into %s", n, args[1])
			return nil
		},
	}
	load.Flags().StringVar(&grantGroup, "grant-group", "", "Group granted access to the table; defaults to the configured group")
	load.Flags().BoolVar(&typed, "typed", false, "Create numeric and boolean columns from detected types")
	load.Flags().IntVar(&chunkSize, "chunk-size", 0, "Rows per INSERT; defaults to the configured size")

	cmd.AddCommand(exec, query, load)
	return cmd
}

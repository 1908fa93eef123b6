package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trainnames/internal/api"
	"trainnames/internal/importer"
	"trainnames/internal/listener"
	"trainnames/internal/pipeline"
	"trainnames/internal/seed"
	"trainnames/internal/storage"
)

func newConvertCmd(a *app) *cobra.Command {
	var dir, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert class tables into a JSON records file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.RawDir
			}
			if out == "" {
				out = a.cfg.RecordsPath
			}
			orch := pipeline.NewOrchestrator(a.cfg, a.log)
			res, err := orch.ProcessDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if err := pipeline.WriteRecordsJSON(out, res.Records); err != nil {
				return err
			}
			fmt.Printf("converted files=%d failed=%d records=%d output=%s\n", len(res.Files), len(res.Failed), len(res.Records), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "input directory (default RAW_DIR)")
	cmd.Flags().StringVar(&out, "out", "", "output JSON path (default RECORDS_PATH)")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the stored trains with a JSON records file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				in = a.cfg.RecordsPath
			}
			records, err := pipeline.ReadRecordsJSON(in)
			if err != nil {
				return err
			}
			return a.withDB(func(db *storage.DB) error {
				res, err := seed.NewService(db, a.log).SeedTrains(records)
				if err != nil {
					return err
				}
				fmt.Printf("seeded inserted=%d skipped=%d rejected=%d\n", res.Inserted, res.Skipped, res.Rejected)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "records JSON path (default RECORDS_PATH)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert and seed in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.RawDir
			}
			return a.withDB(func(db *storage.DB) error {
				sum, err := importer.NewService(db, a.cfg, a.log).Import(cmd.Context(), dir)
				if err != nil {
					return err
				}
				fmt.Printf("import done trace=%s files=%d failed=%d records=%d inserted=%d\n",
					sum.TraceID, sum.Files, sum.Failed, sum.Records, sum.Result.Inserted)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "input directory (default RAW_DIR)")
	return cmd
}

func newClassesSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "classes:seed",
		Short: "Store the class display names",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.ClassesPath
			}
			classes, err := seed.LoadClasses(file)
			if err != nil {
				return err
			}
			return a.withDB(func(db *storage.DB) error {
				if err := seed.NewService(db, a.log).SeedClasses(classes); err != nil {
					return err
				}
				fmt.Printf("classes seeded: %d\n", len(classes))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML class file (default CLASSES_PATH, built-in list when empty)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export:xlsx",
		Short: "Export the stored trains to a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return fmt.Errorf("--out is required")
			}
			return a.withDB(func(db *storage.DB) error {
				rows, err := db.ListTrains(0)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					return fmt.Errorf("no trains stored")
				}
				if err := pipeline.ExportTrainsToXLSX(rows, out); err != nil {
					return err
				}
				fmt.Printf("exported %d rows to %s\n", len(rows), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output xlsx path")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.APIAddr
			}
			return a.withDB(func(db *storage.DB) error {
				mux := api.SetupRoutes(api.NewTrainService(db, a.cfg, a.log))
				return api.Serve(cmd.Context(), addr, mux, a.log)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default API_ADDR)")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-import RAW_DIR whenever its files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *storage.DB) error {
				imp := importer.NewService(db, a.cfg, a.log)
				return listener.NewService(db, imp, a.cfg, a.log).Run(cmd.Context())
			})
		},
	}
}

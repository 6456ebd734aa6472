// Package filetools reads many CSV, Excel or Parquet files at once and either
// stacks them into one frame or returns them side by side.
package filetools

import (
	"context"
	"fmt"
	"log"
	"time"

	"bizwiz/adapters/csvfile"
	"bizwiz/adapters/excel"
	"bizwiz/adapters/parquet"
	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"
)

// File name patterns each bulk reader accepts
const (
	CSVPattern     = "*.csv"
	ExcelPattern   = "*.xls?"
	ParquetPattern = "*.parquet"
)

// DefaultWorkers bounds parallel reads when Options.Workers is unset
const DefaultWorkers = 4

// Options configures the bulk readers
type Options struct {
	// Separate returns one frame per file instead of a single stacked frame
	Separate bool
	// How stacks the frames; defaults to dataset.Diagonal
	How dataset.ConcatHow
	// CleanNames and RemoveEmpty tidy every returned frame
	CleanNames  bool
	RemoveEmpty bool
	// Workers bounds the number of files read at once
	Workers int
	// CSV is passed to csvfile.Read
	CSV csvfile.Options
	// Sheet is passed to excel.Read; empty reads the first sheet
	Sheet string
}

// Result holds the matched paths and the frames read from them. Frames has
// one entry per path when Options.Separate is set, otherwise exactly one.
type Result struct {
	Paths  []string
	Frames []dataframe.DataFrame
}

// Frame returns the first (or only) frame
func (r *Result) Frame() dataframe.DataFrame {
	if len(r.Frames) == 0 {
		return dataframe.DataFrame{}
	}
	return r.Frames[0]
}

type readFunc func(path string) (dataframe.DataFrame, error)

// BulkReadCSV reads every *.csv file named or matched by paths
func BulkReadCSV(ctx context.Context, paths []string, opts Options) (*Result, error) {
	return bulkRead(ctx, "CSV", paths, CSVPattern, opts, func(path string) (dataframe.DataFrame, error) {
		res, err := csvfile.Read(path, opts.CSV)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		return res.Frame, nil
	})
}

// BulkReadExcel reads every *.xls? workbook named or matched by paths
func BulkReadExcel(ctx context.Context, paths []string, opts Options) (*Result, error) {
	return bulkRead(ctx, "Excel", paths, ExcelPattern, opts, func(path string) (dataframe.DataFrame, error) {
		return excel.Read(path, opts.Sheet)
	})
}

// BulkReadParquet reads every *.parquet file named or matched by paths
func BulkReadParquet(ctx context.Context, paths []string, opts Options) (*Result, error) {
	return bulkRead(ctx, "Parquet", paths, ParquetPattern, opts, parquet.Read)
}

func bulkRead(ctx context.Context, kind string, paths []string, pattern string, opts Options, read readFunc) (*Result, error) {
	matched, err := ExpandPaths(paths, pattern)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, errors.NotFound(fmt.Sprintf("%s files matching %s", kind, pattern))
	}

	how := opts.How
	if how == "" {
		how = dataset.Diagonal
	}

	start := time.Now()
	frames, err := readAll(ctx, matched, opts.Workers, read)
	if err != nil {
		return nil, err
	}
	log.Printf("[BulkReader] Read %d %s file(s) in %.2fms", len(matched), kind,
		float64(time.Since(start).Nanoseconds())/1e6)

	if !opts.Separate {
		stacked, err := dataset.Concat(frames, how)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to stack %s files", kind))
		}
		frames = []dataframe.DataFrame{stacked}
	}

	for i := range frames {
		if frames[i], err = tidy(frames[i], opts); err != nil {
			return nil, err
		}
	}
	return &Result{Paths: matched, Frames: frames}, nil
}

// readAll reads paths with at most workers reads in flight. Frames come back
// in path order; the first failure cancels reads not yet started.
func readAll(ctx context.Context, paths []string, workers int, read readFunc) ([]dataframe.DataFrame, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	frames := make([]dataframe.DataFrame, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			df, err := read(path)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("failed to read %s", path))
			}
			frames[i] = df
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

func tidy(df dataframe.DataFrame, opts Options) (dataframe.DataFrame, error) {
	var err error
	if opts.CleanNames && df.Ncol() > 0 {
		if df, err = dataset.CleanNames(df); err != nil {
			return df, err
		}
	}
	if opts.RemoveEmpty && df.Ncol() > 0 {
		if df, err = dataset.RemoveEmpty(df); err != nil {
			return df, err
		}
	}
	return df, nil
}

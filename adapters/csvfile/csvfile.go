// Package csvfile reads CSV files whose text encoding is not known up front
// and writes frames back out as UTF-8 CSV.
package csvfile

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"strings"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"
	"bizwiz/internal/textenc"

	"github.com/go-gota/gota/dataframe"
)

// Options configures Read
type Options struct {
	// Delimiter defaults to ','
	Delimiter rune
	// NoHeader treats the first line as data; columns are named by gota
	NoHeader bool
	// StringsOnly disables type detection so codes such as ZIPs keep their
	// leading zeros
	StringsOnly bool
	// Encodings overrides textenc.DefaultCandidates
	Encodings []textenc.Encoding
	// SkipDetect disables the chardet guess in front of the candidate list
	SkipDetect bool
}

// Result is a successfully decoded and parsed file
type Result struct {
	Path     string
	Encoding textenc.Encoding
	Frame    dataframe.DataFrame
}

// Read decodes path with the first encoding that both decodes the bytes and
// parses as CSV. When every candidate fails the returned error wraps a
// *textenc.NoEncodingError and carries the ENCODING_ERROR code.
func Read(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("CSV file %s", path))
		}
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	candidates := opts.Encodings
	if len(candidates) == 0 {
		candidates = textenc.DefaultCandidates
	}
	if !opts.SkipDetect {
		candidates = textenc.Candidates(data, candidates)
	}

	var parsed dataframe.DataFrame
	res, err := textenc.Try(path, data, candidates, func(text string) error {
		df, err := Parse(text, opts)
		if err != nil {
			return err
		}
		parsed = df
		return nil
	})
	if err != nil {
		var noEnc *textenc.NoEncodingError
		if stderrors.As(err, &noEnc) {
			return nil, errors.WithCode(errors.CodeEncoding, err)
		}
		return nil, err
	}

	if len(res.Failed) > 0 {
		log.Printf("[CSVReader] %s decoded as %s after %d failed attempt(s)", path, res.Encoding, len(res.Failed))
	}
	return &Result{Path: path, Encoding: res.Encoding, Frame: parsed}, nil
}

// Parse reads CSV text into a frame
func Parse(text string, opts Options) (dataframe.DataFrame, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	df := dataframe.ReadCSV(strings.NewReader(text),
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(!opts.NoHeader),
		dataframe.DetectTypes(!opts.StringsOnly),
		dataframe.NaNValues([]string{"", dataset.NA, "NA", "<nil>"}),
	)
	if df.Err != nil {
		return df, fmt.Errorf("failed to parse CSV: %w", df.Err)
	}
	return df, nil
}

// Write saves df as CSV with a header row
func Write(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return fmt.Errorf("cannot write frame: %w", df.Err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return f.Close()
}

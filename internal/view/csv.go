package view

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"financemonkey/fm-cli/internal/fileutils"
)

// WriteCSV marshals rows with the given delimiter. Row types declare their
// columns with csv struct tags.
func WriteCSV[R any](w io.Writer, rows []R, delimiter rune) error {
	if rows == nil {
		rows = []R{}
	}
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteCSVFile writes rows to path, creating parent directories.
func WriteCSVFile[R any](path string, rows []R, delimiter rune) (err error) {
	file, err := fileutils.CreateFile(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing CSV file: %w", cerr)
		}
	}()
	return WriteCSV(file, rows, delimiter)
}

// ReadCSV parses rows from r with the given delimiter.
func ReadCSV[R any](r io.Reader, delimiter rune) ([]R, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	var rows []R
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile[R any](path string, delimiter rune) ([]R, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadCSV[R](file, delimiter)
}

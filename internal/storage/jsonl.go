// Package storage provides JSON Lines persistence for skilltrack records.
// Each collection (users, entities, sessions, goals) lives in its own file;
// appends use O_APPEND, and every rewrite goes through a temp-file+rename so
// a crashed writer never leaves a half-written file visible to readers.
package storage

import (
	"bufio"
	"encoding/json"
	"os"
)

// ParseWarning represents a warning about a corrupted or malformed record
type ParseWarning struct {
	LineNumber int    // Line number in the file (1-indexed)
	Content    string // Raw content of the corrupted line
	Error      string // Description of the parsing error
}

// ReadResult contains the records successfully parsed from a collection file
// along with warnings about any corrupted lines that were skipped.
type ReadResult[T any] struct {
	Records  []T
	Warnings []ParseWarning
}

// Append appends a single record to a JSON Lines collection file.
// Creates the file if it doesn't exist.
// Uses O_APPEND for atomic append operations.
func Append[T any](path string, rec T) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = file.WriteString(string(line) + "\n")
	return err
}

// Read reads all records from a JSON Lines collection file.
// Returns an empty ReadResult if the file doesn't exist.
// Malformed lines are skipped individually and reported as warnings rather
// than failing the whole load; partial data is more useful than a hard
// crash on read.
func Read[T any](path string) (ReadResult[T], error) {
	result := ReadResult[T]{
		Records:  []T{},
		Warnings: []ParseWarning{},
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		lineContent := scanner.Text()

		var rec T
		if err := json.Unmarshal([]byte(lineContent), &rec); err != nil {
			result.Warnings = append(result.Warnings, ParseWarning{
				LineNumber: lineNumber,
				Content:    lineContent,
				Error:      err.Error(),
			})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// ReadRecords reads all well-formed records from a collection file,
// discarding warnings.
func ReadRecords[T any](path string) ([]T, error) {
	result, err := Read[T](path)
	return result.Records, err
}

// Write rewrites a collection file with the given records.
// The write is atomic from an external reader's point of view: records are
// written to a temporary file which is then renamed over the target.
func Write[T any](path string, recs []T) error {
	tmpFile := path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tmpFile)
			return err
		}
		if _, err := file.WriteString(string(line) + "\n"); err != nil {
			_ = file.Close()
			_ = os.Remove(tmpFile)
			return err
		}
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}

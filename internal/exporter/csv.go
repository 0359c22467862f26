package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
)

// CSVWriter provides CSV export functionality. Output is written to a
// temporary sibling and only becomes visible at its final path on commit.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// StageCSV writes headers and records to a staged file for filePath
func (w *CSVWriter) StageCSV(filePath string, headers []string, records [][]string) (*StagedFile, error) {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(records)))

	stream, err := w.CreateStreamWriter(filePath, headers)
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return stream.Stage()
}

// StreamWriter writes CSV records to a temporary file
type StreamWriter struct {
	file     *os.File
	writer   *csv.Writer
	path     string
	finished bool
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.Int("header_count", len(headers)))

	file, err := createTemp(filePath)
	if err != nil {
		return nil, err
	}

	stream := &StreamWriter{
		file:   file,
		writer: csv.NewWriter(file),
		path:   filePath,
	}

	if len(headers) > 0 {
		if err := stream.writer.Write(headers); err != nil {
			stream.Abort()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return stream, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Stage flushes the stream and closes it without making it visible
func (s *StreamWriter) Stage() (*StagedFile, error) {
	if s.finished {
		return nil, fmt.Errorf("stream for %s already finished", s.path)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return nil, fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	s.finished = true
	return stageTemp(s.file, s.path)
}

// Abort discards everything written so far. The final path is left untouched.
func (s *StreamWriter) Abort() {
	if s.finished {
		return
	}
	s.finished = true
	discardTemp(s.file)
}

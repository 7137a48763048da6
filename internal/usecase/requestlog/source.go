package requestlog

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
)

// FileSource reads a request log file line by line and yields validated
// requests. Malformed lines are rejected here with a warning, so the engine
// never sees them. It implements the RequestSource interface.
type FileSource struct {
	file    *os.File
	scanner *bufio.Scanner
	logger  *logger.Logger
}

// NewFileSource opens a request log file for reading.
func NewFileSource(path string, log *logger.Logger) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &FileSource{
		file:    file,
		scanner: bufio.NewScanner(file),
		logger:  log,
	}, nil
}

// Next returns the next well-formed request from the file, skipping blank
// and malformed lines. It returns io.EOF once the file is exhausted.
func (s *FileSource) Next(ctx context.Context) (*orderv1.Request, error) {
	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		request, err := ParseLine(line)
		if err != nil {
			s.logger.Warn("Skipping malformed request line",
				logger.Field{Key: "line", Value: line},
				logger.Field{Key: "reason", Value: err.Error()},
			)
			continue
		}

		return request, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, io.EOF
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

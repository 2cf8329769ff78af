// Package stream decodes the newline-delimited event frames of a chat
// response body.
package stream

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// FramePrefix starts every frame line
const FramePrefix = "data: "

// FrameDecoder reads frames incrementally. A frame split across reads is
// completed by the following read; an unterminated line left at end of
// stream is discarded.
type FrameDecoder struct {
	reader *bufio.Reader
	logger *slog.Logger
}

// NewFrameDecoder creates a decoder over r
func NewFrameDecoder(r io.Reader, logger *slog.Logger) *FrameDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameDecoder{
		reader: bufio.NewReader(r),
		logger: logger,
	}
}

// Next returns the next well-formed event, skipping lines without the frame
// prefix and frames whose JSON does not parse. It returns io.EOF when the
// stream ends.
func (d *FrameDecoder) Next() (*domain.StreamEvent, error) {
	for {
		line, err := d.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line != "" {
					d.logger.Debug("discarding unterminated frame at end of stream", "bytes", len(line))
				}
				return nil, io.EOF
			}
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, FramePrefix) {
			continue
		}

		var evt domain.StreamEvent
		if err := sonic.UnmarshalString(line[len(FramePrefix):], &evt); err != nil {
			d.logger.Debug("skipping malformed frame", "error", err)
			continue
		}
		return &evt, nil
	}
}

package protocol

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/printlink/internal/logging"
)

// Response markers
const (
	TerminatorOK       = "ok"
	TerminatorOKPeriod = "ok."
	ErrorSuffix        = "error."
)

// startPattern matches the response start marker, e.g. "CMD M119 Received."
var startPattern = regexp.MustCompile(`^CMD ([MG]\d+) Received\.$`)

// ResponseParser reads printer responses from a line stream.
//
// The parser has no line or size limit and no timeout: if the printer never
// sends a terminator, ReadResponse blocks until the underlying reader
// returns an error (for example because the connection was closed).
type ResponseParser struct {
	r *bufio.Reader
}

// NewResponseParser creates a parser reading from r. If r is already a
// *bufio.Reader it is used directly so no buffered bytes are lost.
func NewResponseParser(r io.Reader) *ResponseParser {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ResponseParser{r: br}
}

// ReadResponse reads one complete response and decodes it.
//
// Returns:
//   - The decoded value (*PrinterStatus, *PrinterTemperature, *MachineInfo)
//   - nil, nil for acknowledgments that carry no payload
//   - *ProtocolError when the printer sent an error line
//   - *UnknownCommandError when the response is for a command with no decoder
//   - A wrapped io.ErrUnexpectedEOF when the stream ended mid-response
func (p *ResponseParser) ReadResponse() (any, error) {
	env, err := p.ReadEnvelope()
	if err != nil {
		return nil, err
	}
	return env.Decode()
}

// ReadEnvelope reads lines until a terminator or error line and returns the
// raw envelope without decoding it.
func (p *ResponseParser) ReadEnvelope() (*ResponseEnvelope, error) {
	env := &ResponseEnvelope{}

	for {
		line, readErr := p.r.ReadString('\n')
		if line == "" && readErr != nil {
			return nil, streamError(readErr)
		}

		logging.LogRawBytes("Response line", []byte(line))

		line = strings.TrimRight(line, "\r\n")
		done, err := p.consume(env, line)
		if err != nil {
			return nil, err
		}
		if done {
			return env, nil
		}

		if readErr != nil {
			return nil, streamError(readErr)
		}
	}
}

// consume applies one line to the envelope. It returns true when the line
// terminated the response successfully.
func (p *ResponseParser) consume(env *ResponseEnvelope, line string) (bool, error) {
	// Blank lines are padding
	if strings.TrimSpace(line) == "" {
		return false, nil
	}

	// Some firmware pads the start marker with trailing spaces
	if m := startPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
		if !env.captureCode(m[1]) {
			logging.Warn("Ignoring repeated response start marker",
				zap.String("code", env.Code),
				zap.String("line", line),
			)
		}
		return false, nil
	}

	if line == TerminatorOK || line == TerminatorOKPeriod {
		logging.Debug("Response complete",
			zap.String("code", env.Code),
			zap.Int("data_lines", len(env.Lines)),
		)
		return true, nil
	}

	if strings.HasSuffix(line, ErrorSuffix) {
		return false, parseErrorLine(line)
	}

	env.Lines = append(env.Lines, line)
	return false, nil
}

// parseErrorLine builds a ProtocolError from an error line. The code is the
// first token only when the line has exactly two tokens ("E1 error.").
func parseErrorLine(line string) *ProtocolError {
	code := ""
	if fields := strings.Fields(line); len(fields) == 2 {
		code = fields[0]
	}
	return &ProtocolError{Code: code, Line: line}
}

func streamError(err error) error {
	if err == io.EOF {
		return fmt.Errorf("connection closed before response completed: %w", io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("failed to read response: %w", err)
}

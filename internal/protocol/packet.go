package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"go.uber.org/zap"

	"github.com/muurk/printlink/internal/logging"
)

// File transfer frame layout
const (
	FramePayloadSize = 4096                               // Payload bytes carried by every frame
	FrameHeaderSize  = 16                                 // Prefix + sequence + length + CRC
	FrameSize        = FrameHeaderSize + FramePayloadSize // Bytes on the wire per frame
)

// FramePrefix starts every file transfer frame
var FramePrefix = [4]byte{0x5A, 0x5A, 0xEF, 0xBF}

var (
	ErrFrameSize     = errors.New("frame has wrong size")
	ErrFramePrefix   = errors.New("frame prefix mismatch")
	ErrFrameLength   = errors.New("frame length exceeds payload size")
	ErrFrameChecksum = errors.New("frame checksum doesn't match payload")
)

// Frame is one unit of a file transfer.
type Frame struct {
	Sequence uint32 // Position in the transfer, starting at 0
	Length   uint32 // Unpadded payload length
	CRC      uint32 // CRC-32 of the unpadded payload
	Payload  []byte // Unpadded payload (len == Length)
}

// NewFrame builds the frame carrying payload at position seq.
// payload must not be longer than FramePayloadSize.
func NewFrame(seq uint32, payload []byte) Frame {
	return Frame{
		Sequence: seq,
		Length:   uint32(len(payload)),
		CRC:      Checksum(payload),
		Payload:  payload,
	}
}

// AppendTo appends the wire encoding of the frame to b. The payload is zero
// padded to FramePayloadSize.
func (f Frame) AppendTo(b []byte) []byte {
	b = append(b, FramePrefix[:]...)
	b = AppendUint32(b, f.Sequence)
	b = AppendUint32(b, f.Length)
	b = AppendUint32(b, f.CRC)
	b = append(b, f.Payload...)

	if pad := FramePayloadSize - len(f.Payload); pad > 0 {
		b = append(b, make([]byte, pad)...)
	}
	return b
}

// Bytes returns the wire encoding of the frame.
func (f Frame) Bytes() []byte {
	return f.AppendTo(make([]byte, 0, FrameSize))
}

// String returns a debug representation of the frame
func (f Frame) String() string {
	return fmt.Sprintf("Frame{seq=%d, length=%d, crc=0x%08x}", f.Sequence, f.Length, f.CRC)
}

// ParseFrame decodes a frame from its wire encoding and verifies its checksum.
func ParseFrame(b []byte) (Frame, error) {
	if len(b) != FrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes (want %d)", ErrFrameSize, len(b), FrameSize)
	}
	if !bytes.Equal(b[0:4], FramePrefix[:]) {
		return Frame{}, fmt.Errorf("%w: % X", ErrFramePrefix, b[0:4])
	}

	f := Frame{
		Sequence: Uint32(b[4:8]),
		Length:   Uint32(b[8:12]),
		CRC:      Uint32(b[12:16]),
	}
	if f.Length > FramePayloadSize {
		return Frame{}, fmt.Errorf("%w: %d", ErrFrameLength, f.Length)
	}

	f.Payload = b[FrameHeaderSize : FrameHeaderSize+int(f.Length)]
	if sum := Checksum(f.Payload); sum != f.CRC {
		return Frame{}, fmt.Errorf("%w: got 0x%08x, header says 0x%08x", ErrFrameChecksum, sum, f.CRC)
	}
	return f, nil
}

// FrameCount returns the number of frames needed to carry size bytes.
func FrameCount(size int) int {
	return (size + FramePayloadSize - 1) / FramePayloadSize
}

// Frames yields the frames for data in sequence order. Frames are built
// lazily and share memory with data. An empty buffer yields no frames.
func Frames(data []byte) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		var seq uint32
		for off := 0; off < len(data); off += FramePayloadSize {
			end := min(off+FramePayloadSize, len(data))
			if !yield(NewFrame(seq, data[off:end])) {
				return
			}
			seq++
		}
	}
}

// FrameCallback is called after each frame has been written. sent is the
// number of payload bytes written so far and total is len(data).
type FrameCallback func(frame Frame, sent, total int)

// flusher is implemented by buffered writers such as *bufio.Writer
type flusher interface {
	Flush() error
}

// WriteFrames writes every frame of data to w, one at a time. If w can be
// flushed it is flushed after each frame so no more than one frame is ever
// buffered. onFrame may be nil.
func WriteFrames(w io.Writer, data []byte, onFrame FrameCallback) (int, error) {
	buf := make([]byte, 0, FrameSize)
	f, canFlush := w.(flusher)
	sent := 0
	count := 0

	for frame := range Frames(data) {
		buf = frame.AppendTo(buf[:0])
		if _, err := w.Write(buf); err != nil {
			return count, fmt.Errorf("failed to write frame %d: %w", frame.Sequence, err)
		}
		if canFlush {
			if err := f.Flush(); err != nil {
				return count, fmt.Errorf("failed to flush frame %d: %w", frame.Sequence, err)
			}
		}

		count++
		sent += int(frame.Length)
		logging.LogFrame(frame.Sequence, frame.Length, frame.CRC)

		if onFrame != nil {
			onFrame(frame, sent, len(data))
		}
	}

	logging.Debug("File frames written",
		zap.Int("frames", count),
		zap.Int("bytes", sent),
	)
	return count, nil
}

// Reassemble concatenates the unpadded payloads of frames, checking that the
// sequence numbers run from 0 without gaps.
func Reassemble(frames []Frame) ([]byte, error) {
	var out []byte
	for i, f := range frames {
		if f.Sequence != uint32(i) {
			return nil, fmt.Errorf("frame %d has sequence %d", i, f.Sequence)
		}
		out = append(out, f.Payload...)
	}
	return out, nil
}

package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func testData(n int) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(data)
	return data
}

func TestFrames_RoundTrip(t *testing.T) {
	sizes := []struct {
		name       string
		size       int
		wantFrames int
	}{
		{"empty", 0, 0},
		{"one byte", 1, 1},
		{"exactly one frame", FramePayloadSize, 1},
		{"one frame plus one byte", FramePayloadSize + 1, 2},
		{"several plus partial", 3*FramePayloadSize + 1000, 4},
		{"exact multiple", 5 * FramePayloadSize, 5},
	}

	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			data := testData(tt.size)

			var wire bytes.Buffer
			count, err := WriteFrames(&wire, data, nil)
			if err != nil {
				t.Fatalf("WriteFrames() error = %v", err)
			}
			if count != tt.wantFrames {
				t.Errorf("WriteFrames() count = %d, want %d", count, tt.wantFrames)
			}
			if FrameCount(tt.size) != tt.wantFrames {
				t.Errorf("FrameCount(%d) = %d, want %d", tt.size, FrameCount(tt.size), tt.wantFrames)
			}
			if wire.Len() != tt.wantFrames*FrameSize {
				t.Fatalf("wire length = %d, want %d", wire.Len(), tt.wantFrames*FrameSize)
			}

			var frames []Frame
			raw := wire.Bytes()
			for off := 0; off < len(raw); off += FrameSize {
				frame, err := ParseFrame(raw[off : off+FrameSize])
				if err != nil {
					t.Fatalf("ParseFrame() at offset %d error = %v", off, err)
				}
				frames = append(frames, frame)
			}

			got, err := Reassemble(frames)
			if err != nil {
				t.Fatalf("Reassemble() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("reassembled %d bytes, want the original %d bytes", len(got), len(data))
			}
		})
	}
}

func TestFrames_HeaderFields(t *testing.T) {
	data := testData(2*FramePayloadSize + 10)
	frames := slices.Collect(Frames(data))

	if len(frames) != 3 {
		t.Fatalf("len(frames) = %d, want 3", len(frames))
	}

	for i, frame := range frames {
		if frame.Sequence != uint32(i) {
			t.Errorf("frame %d sequence = %d", i, frame.Sequence)
		}

		wire := frame.Bytes()
		if len(wire) != FrameSize {
			t.Fatalf("frame %d wire length = %d, want %d", i, len(wire), FrameSize)
		}
		if !bytes.Equal(wire[0:4], []byte{0x5A, 0x5A, 0xEF, 0xBF}) {
			t.Errorf("frame %d prefix = % X", i, wire[0:4])
		}
		if Uint32(wire[4:8]) != uint32(i) {
			t.Errorf("frame %d wire sequence = %d", i, Uint32(wire[4:8]))
		}

		length := Uint32(wire[8:12])
		crc := Uint32(wire[12:16])
		if sum := Checksum(wire[FrameHeaderSize : FrameHeaderSize+int(length)]); sum != crc {
			t.Errorf("frame %d crc = 0x%08x, recomputed 0x%08x", i, crc, sum)
		}
	}

	last := frames[2].Bytes()
	if got := Uint32(last[8:12]); got != 10 {
		t.Errorf("last frame length = %d, want 10", got)
	}
	padding := last[FrameHeaderSize+10:]
	if !bytes.Equal(padding, make([]byte, FramePayloadSize-10)) {
		t.Error("last frame padding should be zeros")
	}
	if Uint32(last[12:16]) == Checksum(last[FrameHeaderSize:]) {
		t.Error("last frame crc should not cover the padding")
	}
}

func TestFrames_StopEarly(t *testing.T) {
	data := testData(4 * FramePayloadSize)
	seen := 0
	for range Frames(data) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("seen = %d, want 2", seen)
	}
}

type countingWriter struct {
	buf     *bufio.Writer
	flushes int
}

func (w *countingWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *countingWriter) Flush() error {
	w.flushes++
	return w.buf.Flush()
}

func TestWriteFrames_FlushesEachFrame(t *testing.T) {
	var out bytes.Buffer
	w := &countingWriter{buf: bufio.NewWriter(&out)}
	data := testData(3*FramePayloadSize - 1)

	var progress []int
	count, err := WriteFrames(w, data, func(frame Frame, sent, total int) {
		if total != len(data) {
			t.Errorf("total = %d, want %d", total, len(data))
		}
		progress = append(progress, sent)
	})
	if err != nil {
		t.Fatalf("WriteFrames() error = %v", err)
	}

	if w.flushes != count {
		t.Errorf("flushes = %d, want one per frame (%d)", w.flushes, count)
	}
	want := []int{FramePayloadSize, 2 * FramePayloadSize, len(data)}
	if !slices.Equal(progress, want) {
		t.Errorf("progress = %v, want %v", progress, want)
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after == 0 {
		return 0, errors.New("broken pipe")
	}
	w.after--
	return len(p), nil
}

func TestWriteFrames_WriteError(t *testing.T) {
	count, err := WriteFrames(&failingWriter{after: 1}, testData(3*FramePayloadSize), nil)
	if err == nil {
		t.Fatal("WriteFrames() should fail")
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestParseFrame_Errors(t *testing.T) {
	good := NewFrame(0, []byte("G28\nG1 X10\n")).Bytes()

	tests := []struct {
		name    string
		frame   []byte
		wantErr error
	}{
		{"short", good[:100], ErrFrameSize},
		{"bad prefix", func() []byte {
			f := slices.Clone(good)
			f[0] = 0x00
			return f
		}(), ErrFramePrefix},
		{"length too large", func() []byte {
			f := slices.Clone(good)
			PutUint32(f[8:12], FramePayloadSize+1)
			return f
		}(), ErrFrameLength},
		{"corrupt payload", func() []byte {
			f := slices.Clone(good)
			f[FrameHeaderSize] ^= 0xFF
			return f
		}(), ErrFrameChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame(tt.frame)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseFrame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReassemble_Gap(t *testing.T) {
	frames := []Frame{NewFrame(0, []byte("a")), NewFrame(2, []byte("b"))}
	if _, err := Reassemble(frames); err == nil {
		t.Error("Reassemble() should reject a sequence gap")
	}
}

// Package protocol implements the printer control protocol.
//
// The printer speaks two layers over a single TCP connection:
//   - A line-oriented text layer for commands and their responses
//   - A binary frame layer used only while a file is being stored
//
// # Text Layer
//
// Commands are sent as "~" followed by the command code and optional
// space-separated arguments, terminated by CRLF:
//
//	~M119
//	~M28 1048576 0:/user/benchy.gx
//	~M23 0:/user/benchy.gx
//
// A response starts with a marker line, carries zero or more data lines and
// ends with "ok" (some firmware sends "ok."):
//
//	CMD M119 Received.
//	Endstop: X-max:0 Y-max:0 Z-max:1
//	MachineStatus: READY
//	MoveMode: READY
//	ok
//
// A line ending in "error." aborts the response. When the line has exactly
// two tokens the first one is the device's error code.
//
// # Binary Layer
//
// Files are split into 4096-byte frames:
//
//	[0-3]    0x5A 0x5A 0xEF 0xBF   Frame prefix
//	[4-7]    sequence              Frame counter starting at 0 (big-endian)
//	[8-11]   length                Unpadded payload length (big-endian)
//	[12-15]  crc32                 IEEE CRC-32 of the unpadded payload (big-endian)
//	[16+]    payload               Always 4096 bytes, zero padded on the last frame
//
// # Usage Example - Parsing
//
//	parser := protocol.NewResponseParser(bufio.NewReader(conn))
//	result, err := parser.ReadResponse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if status, ok := result.(*protocol.PrinterStatus); ok {
//	    fmt.Println(status)
//	}
//
// # Usage Example - Packetizing
//
//	for frame := range protocol.Frames(data) {
//	    if _, err := conn.Write(frame.Bytes()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Decoded Values
//
// Decoders never fail. A field that is missing or malformed in the response
// decodes to an unknown Optional instead of a zero value, so callers can tell
// "the printer reported 0" from "the printer reported nothing".
//
// # Thread Safety
//
// Codec, decoder and packetizer functions are stateless and safe for
// concurrent use. A ResponseParser is bound to one reader and must not be
// shared between goroutines.
package protocol

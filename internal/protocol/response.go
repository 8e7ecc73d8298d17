package protocol

// ResponseEnvelope collects one response between its start marker and its
// terminator.
type ResponseEnvelope struct {
	// Code is the command code taken from the "CMD <code> Received." line.
	// Empty when the printer acknowledged without a start marker.
	Code string

	// Lines holds the data lines in arrival order.
	Lines []string
}

// captureCode records the command code. Only the first call has any effect.
func (e *ResponseEnvelope) captureCode(code string) bool {
	if e.Code != "" {
		return false
	}
	e.Code = code
	return true
}

// Decoder turns the data lines of a completed response into a typed value.
type Decoder interface {
	Decode(lines []string) any
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(lines []string) any

// Decode implements Decoder
func (f DecoderFunc) Decode(lines []string) any {
	return f(lines)
}

// decoders maps each payload-carrying command code to its decoder.
var decoders = map[string]Decoder{
	CodeQueryEndstop: DecoderFunc(func(lines []string) any {
		return DecodeStatus(lines)
	}),
	CodeQueryTemperature: DecoderFunc(func(lines []string) any {
		return DecodeTemperature(lines)
	}),
	CodeQueryFirmwareVersion: DecoderFunc(func(lines []string) any {
		return DecodeMachineInfo(lines)
	}),
}

// noPayload lists the file transfer commands whose acknowledgment carries
// nothing worth decoding.
var noPayload = map[string]bool{
	CodeBeginStore:       true,
	CodeEndStore:         true,
	CodePrintFromStorage: true,
}

// HasPayload reports whether responses to cmd decode into a value.
func HasPayload(cmd Command) bool {
	_, ok := decoders[cmd.Code()]
	return ok
}

// Decode dispatches the envelope to the decoder registered for its command
// code. It returns nil for envelopes without a code and for file transfer
// commands.
func (e *ResponseEnvelope) Decode() (any, error) {
	if e.Code == "" {
		return nil, nil
	}
	if noPayload[e.Code] {
		return nil, nil
	}
	decoder, ok := decoders[e.Code]
	if !ok {
		return nil, &UnknownCommandError{Code: e.Code}
	}
	return decoder.Decode(e.Lines), nil
}

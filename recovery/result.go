package recovery

// Kind identifies which member of the Input union is populated.
type Kind int

const (
	// KindBytes indicates a raw byte sequence input
	KindBytes Kind = iota
	// KindText indicates a text string input
	KindText
	// KindValue indicates an already-parsed structured value input
	KindValue
)

// String returns a string representation of the input kind
func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Input is a tagged union over the payload forms the engine accepts: a raw
// byte sequence, a text string, or an already-parsed structured value.
//
// Input is immutable after construction and owned solely by the engine for
// the duration of one Process call. Because no per-call state is stored
// anywhere else, concurrent Process calls on independent Inputs are safe.
type Input struct {
	kind  Kind
	bytes []byte
	text  string
	value any
}

// BytesInput wraps a raw byte sequence as an Input.
func BytesInput(b []byte) Input {
	return Input{kind: KindBytes, bytes: b}
}

// TextInput wraps a text string as an Input.
func TextInput(s string) Input {
	return Input{kind: KindText, text: s}
}

// ValueInput wraps an already-parsed structured value as an Input.
func ValueInput(v any) Input {
	return Input{kind: KindValue, value: v}
}

// Kind returns which member of the union is populated.
func (in Input) Kind() Kind {
	return in.kind
}

// Bytes returns the raw byte sequence (valid when Kind is KindBytes).
func (in Input) Bytes() []byte {
	return in.bytes
}

// Text returns the text string (valid when Kind is KindText).
func (in Input) Text() string {
	return in.text
}

// Value returns the structured value (valid when Kind is KindValue).
func (in Input) Value() any {
	return in.value
}

// IsEmpty reports whether the input carries no payload at all.
func (in Input) IsEmpty() bool {
	switch in.kind {
	case KindBytes:
		return len(in.bytes) == 0
	case KindText:
		return in.text == ""
	case KindValue:
		return in.value == nil
	default:
		return true
	}
}

// Classification is the sniffing decision that determines which processing
// path a payload takes. It is derived per call and never stored.
type Classification int

const (
	// PlainBytes is the default classification: plain text, structured
	// values, and byte sequences without the LZ4 frame magic.
	PlainBytes Classification = iota
	// CompressedFrame is a byte sequence starting with the LZ4 frame magic
	CompressedFrame
	// Base64CompressedFrame is text that base64-decodes to an LZ4 frame
	Base64CompressedFrame
	// CorruptedText is text containing control characters or a damaged
	// brace-delimited structure
	CorruptedText
)

// String returns a string representation of the classification
func (c Classification) String() string {
	switch c {
	case PlainBytes:
		return "plain_bytes"
	case CompressedFrame:
		return "compressed_frame"
	case Base64CompressedFrame:
		return "base64_compressed_frame"
	case CorruptedText:
		return "corrupted_text"
	default:
		return "unknown"
	}
}

// Operation tags the processing path that actually executed for a payload.
// The tag always reflects the executed path, never a planned one.
type Operation string

const (
	// OpCompress indicates the payload was compressed and emitted
	OpCompress Operation = "compress"
	// OpDecompress indicates an LZ4 frame was decoded and its content recovered
	OpDecompress Operation = "decompress"
	// OpDecompressFailed indicates every decode attempt was exhausted;
	// the original bytes pass through unchanged
	OpDecompressFailed Operation = "decompress_failed"
	// OpCleanup indicates corrupted text was sanitized, repaired and parsed
	OpCleanup Operation = "cleanup"
	// OpCleanupFailed indicates the cleanup chain failed unexpectedly at
	// every stage
	OpCleanupFailed Operation = "cleanup_failed"
	// OpCleaned indicates compression was attempted but discarded for an
	// insufficient ratio, and the payload was cleaned instead
	OpCleaned Operation = "cleaned"
)

// OutputFormat selects the encoding of successfully compressed output.
type OutputFormat string

const (
	// FormatBuffer emits compressed output as raw bytes
	FormatBuffer OutputFormat = "buffer"
	// FormatBase64 emits compressed output as base64 text
	FormatBase64 OutputFormat = "base64"
	// FormatHex emits compressed output as hex text
	FormatHex OutputFormat = "hex"
)

// Valid reports whether the format is one of the supported encodings.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatBuffer, FormatBase64, FormatHex:
		return true
	default:
		return false
	}
}

// Meta describes what happened to a payload during one Process call.
type Meta struct {
	Operation        Operation    `json:"operation"`
	OriginalSize     int          `json:"originalSize"`
	DecompressedSize int          `json:"decompressedSize,omitempty"`
	DecodeRetries    int          `json:"decodeRetries,omitempty"`
	CompressedSize   int          `json:"compressedSize,omitempty"`
	CompressionRatio float64      `json:"compressionRatio,omitempty"`
	Format           OutputFormat `json:"format,omitempty"`
	Error            string       `json:"error,omitempty"`
}

// Result is the outcome of one Process call: the recovered, parsed, or
// compressed payload plus metadata describing the executed path.
//
// Payload holds one of: a structured value (map[string]any or []any), a
// text string, or raw bytes.
type Result struct {
	Payload any  `json:"payload"`
	Meta    Meta `json:"meta"`
}

// Severity grades the status signal emitted alongside each outcome.
type Severity int

const (
	// SeveritySuccess means the payload was handled on its primary path
	SeveritySuccess Severity = iota
	// SeverityRecovered means the payload was handled on a degraded
	// fallback (repaired text instead of a parsed value, for instance)
	SeverityRecovered
	// SeverityWarning means a non-fatal problem occurred, such as an
	// exhausted decode or an empty payload
	SeverityWarning
	// SeverityFailure means the message could not be processed at all
	SeverityFailure
)

// String returns a string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityRecovered:
		return "recovered"
	case SeverityWarning:
		return "warning"
	case SeverityFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Signal is the status the engine reports for the most recent invocation.
// It is advisory only and never persisted between calls.
type Signal struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

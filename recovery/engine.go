package recovery

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/c360/reclaim/errors"
)

// Engine sequences the recovery components for one payload at a time:
// sniff, then decompress / clean up / compress depending on classification,
// and decide the final output representation and metadata.
//
// An Engine holds only read-only configuration fixed at construction. Every
// Process call is independent, so concurrent calls are safe without
// synchronization.
type Engine struct {
	opts      Options
	sniffer   *Sniffer
	decoder   *FrameDecoder
	encoder   *FrameEncoder
	recoverer *Recoverer
	parser    *Parser
	logger    *slog.Logger
}

// New creates a recovery engine with the given options.
func New(opts ...Option) *Engine {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		opts:      options,
		sniffer:   NewSniffer(),
		decoder:   NewFrameDecoder(options.MaxOffsetRetries),
		encoder:   NewFrameEncoder(options.CompressionLevel),
		recoverer: NewRecoverer(),
		parser:    NewParser(),
		logger:    logger,
	}
}

// Process classifies the input and runs the matching path. Empty input
// short-circuits before classification with a warning signal and no result.
// Any unexpected fault in the chain is caught here and reported as a
// message-scoped failure: a non-nil error with no result.
func (e *Engine) Process(in Input) (result *Result, signal Signal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			signal = Signal{Severity: SeverityFailure, Message: fmt.Sprintf("unexpected fault: %v", rec)}
			err = errors.WrapFatal(
				fmt.Errorf("panic: %v", rec), "Engine", "Process", "payload processing")
		}
	}()

	if in.IsEmpty() {
		return nil, Signal{Severity: SeverityWarning, Message: "empty payload"}, nil
	}

	det := e.sniffer.Classify(in)
	e.logger.Debug("payload classified",
		"classification", det.Class.String(),
		"input_kind", in.Kind().String())

	switch det.Class {
	case CorruptedText:
		return e.cleanupPath(det.Text)
	case CompressedFrame, Base64CompressedFrame:
		return e.decompressPath(det.Bytes)
	default:
		return e.compressPath(det.Bytes)
	}
}

// cleanupChain is the shared sanitize → recover → parse sequence with its
// fallback order: parsed value, then recovered text, then sanitized text.
func (e *Engine) cleanupChain(text string) (any, Severity) {
	sanitized := Sanitize(text)
	recovered := e.recoverer.Recover(sanitized)

	if v, ok := e.parser.TryParse(recovered); ok {
		return v, SeveritySuccess
	}
	if recovered != "" {
		return recovered, SeverityRecovered
	}
	return sanitized, SeverityRecovered
}

func (e *Engine) cleanupPath(text string) (*Result, Signal, error) {
	payload, sev, ok := e.guardedCleanup(text)
	if !ok {
		res := &Result{
			Payload: text,
			Meta: Meta{
				Operation:    OpCleanupFailed,
				OriginalSize: len(text),
				Error:        "cleanup chain failed unexpectedly",
			},
		}
		return res, Signal{Severity: SeverityWarning, Message: "cleanup failed; original text passed through"}, nil
	}

	res := &Result{
		Payload: payload,
		Meta: Meta{
			Operation:    OpCleanup,
			OriginalSize: len(text),
		},
	}
	return res, cleanupSignal(sev), nil
}

func (e *Engine) decompressPath(data []byte) (*Result, Signal, error) {
	decoded, retries, err := e.decoder.Decode(data)
	if err != nil {
		// Recoverable outcome: the original bytes pass through with an
		// explanatory tag and a degraded-status signal.
		res := &Result{
			Payload: data,
			Meta: Meta{
				Operation:     OpDecompressFailed,
				OriginalSize:  len(data),
				DecodeRetries: retries,
				Error:         err.Error(),
			},
		}
		return res, Signal{Severity: SeverityWarning, Message: "frame decode exhausted every offset"}, nil
	}

	payload, sev, ok := e.guardedCleanup(string(decoded))
	if !ok {
		payload, sev = string(decoded), SeverityRecovered
	}

	res := &Result{
		Payload: payload,
		Meta: Meta{
			Operation:        OpDecompress,
			OriginalSize:     len(data),
			DecompressedSize: len(decoded),
			DecodeRetries:    retries,
		},
	}
	return res, cleanupSignal(sev), nil
}

func (e *Engine) compressPath(data []byte) (*Result, Signal, error) {
	compressed, err := e.encoder.Encode(data)
	if err != nil {
		return nil, Signal{Severity: SeverityFailure, Message: "frame encode failed"},
			errors.WrapFatal(err, "Engine", "compressPath", "frame encode")
	}

	ratio := float64(len(data)-len(compressed)) / float64(len(data))
	if ratio < e.opts.RatioThreshold {
		// Not worth keeping; discard the compressed bytes and clean the
		// text form of the original instead.
		e.logger.Debug("compression ratio below threshold, cleaning instead",
			"ratio", ratio,
			"threshold", e.opts.RatioThreshold)

		payload, sev, ok := e.guardedCleanup(string(data))
		if !ok {
			payload, sev = string(data), SeverityRecovered
		}
		res := &Result{
			Payload: payload,
			Meta: Meta{
				Operation:    OpCleaned,
				OriginalSize: len(data),
			},
		}
		return res, cleanupSignal(sev), nil
	}

	var out any
	switch e.opts.Format {
	case FormatBase64:
		out = base64.StdEncoding.EncodeToString(compressed)
	case FormatHex:
		out = hex.EncodeToString(compressed)
	default:
		out = compressed
	}

	res := &Result{
		Payload: out,
		Meta: Meta{
			Operation:        OpCompress,
			OriginalSize:     len(data),
			CompressedSize:   len(compressed),
			CompressionRatio: ratio,
			Format:           e.opts.Format,
		},
	}
	return res, Signal{Severity: SeveritySuccess, Message: "payload compressed"}, nil
}

// guardedCleanup runs the cleanup chain behind a recover so a heuristic
// blowing up degrades the message instead of killing it.
func (e *Engine) guardedCleanup(text string) (payload any, sev Severity, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			payload, sev, ok = nil, SeverityWarning, false
		}
	}()
	payload, sev = e.cleanupChain(text)
	return payload, sev, true
}

func cleanupSignal(sev Severity) Signal {
	if sev == SeveritySuccess {
		return Signal{Severity: SeveritySuccess, Message: "payload recovered"}
	}
	return Signal{Severity: SeverityRecovered, Message: "payload recovered as text"}
}

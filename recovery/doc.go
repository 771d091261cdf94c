// Package recovery implements the payload classification-and-recovery
// engine at the core of reclaim.
//
// A payload of unknown provenance arrives from a streaming pipeline as raw
// bytes, text, or an already-parsed structure. The engine determines what it
// actually is and produces a best-effort clean, structured result:
//
//   - LZ4-framed blocks are decompressed, with a bounded set of
//     offset-skipped retries when the frame header is damaged
//   - syntactically damaged JSON text (truncated, interleaved control
//     bytes, stray brackets) is repaired through ordered structural
//     heuristics and reparsed
//   - plain payloads are compressed, unless the ratio is not worth it, in
//     which case they are cleaned instead
//
// Components, leaves first: Sniffer classifies input; FrameDecoder and
// FrameEncoder handle the LZ4 frame format; Sanitize strips control
// characters; Recoverer repairs JSON structure, accepting repair candidates
// only when ValidStructure passes; Parser runs the layered strict → lenient
// → extract parse chain; Engine sequences them per input.
//
// Every fallible step degrades instead of failing: a repaired payload falls
// back from parsed value to repaired text to sanitized text to the raw
// input, and the executed path is always reflected in the result's
// operation tag. Engines hold no per-call state, so concurrent Process
// calls are safe.
package recovery

// Package reclaim provides a payload recovery pipeline for message
// streams. It classifies incoming payloads, decompresses LZ4 frames
// (including frames buried behind junk prefix bytes), repairs corrupted
// JSON text, and compresses plain payloads for downstream transport.
//
// # Architecture
//
// Reclaim is built as a small set of NATS-connected components driven by
// a runtime:
//
//	┌─────────────────────────────────────┐
//	│            Runtime                  │  Component lifecycle,
//	│   (create, start, stop, monitor)    │  /metrics, /healthz
//	└─────────────────────────────────────┘
//	           ↓ orchestrates
//	┌─────────────────────────────────────┐
//	│          Components                 │  Recovery processor,
//	│     (processor, output)             │  file output
//	└─────────────────────────────────────┘
//	           ↓ communicate via
//	┌─────────────────────────────────────┐
//	│         NATS Messaging              │  raw.> in,
//	│          (pub/sub)                  │  recovered.> out
//	└─────────────────────────────────────┘
//
// The recovery engine itself (package recovery) is transport-free and can
// be embedded directly:
//
//	eng := recovery.New(recovery.WithOutputFormat(recovery.FormatBase64))
//	result, sig, err := eng.Process(recovery.BytesInput(data))
//
// Every payload takes exactly one of four paths, recorded in the result's
// operation tag:
//
//   - decompress: input carried the LZ4 frame magic and was decoded,
//     retrying at byte offsets 1..N when the frame is buried
//   - cleanup: corrupted text was sanitized, repaired, and parsed
//   - compress: plain input was LZ4-compressed (buffer, base64, or hex)
//   - cleaned: compression was discarded for an insufficient ratio and
//     the payload was cleaned instead
//
// Failed decode and cleanup attempts pass the original payload through
// under decompress_failed or cleanup_failed; no input is ever dropped.
//
// # Packages
//
// Core:
//   - recovery: classification, frame codec, repair heuristics, engine
//   - message: BaseMessage envelope and the core.recovery.v1 payload
//
// Components:
//   - processor/recovery: NATS-hosted recovery processor
//   - output/file: recovery results to disk (json, jsonl, raw)
//   - componentregistry: registration of built-in components
//
// Infrastructure:
//   - engine: runtime hosting the components
//   - component: component lifecycle, registry, port definitions
//   - natsclient: NATS connection management with circuit breaking
//   - metric: Prometheus metrics
//   - errors: classified error handling
//   - health: health status reporting
//   - config: configuration loading and validation
//
// # Binary
//
//	# Run with defaults (local NATS, recovery processor on raw.>)
//	./bin/reclaim
//
//	# Run with custom config
//	./bin/reclaim --config=/etc/reclaim/config.json
package reclaim

package recovery

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/c360/reclaim/errors"
)

// FrameDecoder decompresses LZ4 frames with a bounded brute-force recovery
// for malformed or partially-stripped frame headers: after a failed direct
// decode it retries with the input sliced at offsets 1 through maxOffset,
// stopping at the first success.
//
// Malformed headers are common enough in this pipeline's upstream transport
// to warrant the retry loop rather than immediate failure.
type FrameDecoder struct {
	maxOffset int
}

// NewFrameDecoder creates a frame decoder with the given retry offset bound.
// Non-positive bounds fall back to DefaultMaxOffsetRetries.
func NewFrameDecoder(maxOffset int) *FrameDecoder {
	if maxOffset <= 0 {
		maxOffset = DefaultMaxOffsetRetries
	}
	return &FrameDecoder{maxOffset: maxOffset}
}

// Decode decompresses an LZ4 frame, retrying at successive start offsets
// when the direct decode fails. Offsets 1 through maxOffset inclusive are
// attempted, skipping any at or beyond the input length. The returned count
// is the number of offset retries performed; zero means the direct decode
// succeeded. Exhausting every offset is a signaled, recoverable outcome
// (errors.ErrDecodeFailed), not a fault: the caller passes the original
// bytes through with a decompress_failed tag.
func (d *FrameDecoder) Decode(data []byte) ([]byte, int, error) {
	if len(data) == 0 {
		return nil, 0, errors.WrapTransient(
			errors.ErrDecodeFailed, "FrameDecoder", "Decode", "empty input")
	}

	if out, err := decodeFrame(data); err == nil {
		return out, 0, nil
	}

	retries := 0
	for offset := 1; offset <= d.maxOffset && offset < len(data); offset++ {
		retries++
		if out, err := decodeFrame(data[offset:]); err == nil {
			return out, retries, nil
		}
	}

	return nil, retries, errors.WrapTransient(
		errors.ErrDecodeFailed, "FrameDecoder", "Decode",
		fmt.Sprintf("direct decode and %d offset retries", retries))
}

func decodeFrame(data []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		// An empty stream decodes to nothing; treat it as a failed
		// frame so the offset retries get a chance.
		return nil, errors.ErrDecodeFailed
	}
	return out, nil
}

// FrameEncoder compresses payloads into LZ4 frames. It is the trusted
// primitive behind the compress path; its only defined failure mode is an
// error from the underlying writer.
type FrameEncoder struct {
	level lz4.CompressionLevel
}

// NewFrameEncoder creates a frame encoder. The level is mapped onto the
// nearest supported lz4 compression level; zero means the fast default.
func NewFrameEncoder(level int) *FrameEncoder {
	return &FrameEncoder{level: mapLevel(level)}
}

// Encode compresses the payload into a complete LZ4 frame.
func (e *FrameEncoder) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := zw.Apply(lz4.CompressionLevelOption(e.level)); err != nil {
		return nil, errors.WrapInvalid(err, "FrameEncoder", "Encode", "apply compression level")
	}
	if _, err := zw.Write(data); err != nil {
		return nil, errors.WrapTransient(err, "FrameEncoder", "Encode", "write frame")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.WrapTransient(err, "FrameEncoder", "Encode", "finalize frame")
	}
	return buf.Bytes(), nil
}

func mapLevel(level int) lz4.CompressionLevel {
	switch {
	case level <= 0:
		return lz4.Fast
	case level >= 9:
		return lz4.Level9
	default:
		levels := []lz4.CompressionLevel{
			lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
			lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
		}
		return levels[level]
	}
}

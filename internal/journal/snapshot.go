package journal

import (
	"encoding/hex"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// Checksum returns the hex blake2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// codecs builds the shared encoder and decoder on first use. Their
// EncodeAll and DecodeAll methods may be called concurrently.
func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return encoder, decoder, codecErr
}

// Compress returns a zstd frame holding data.
func Compress(data []byte) ([]byte, error) {
	enc, _, err := codecs()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress.
func Decompress(frame []byte) ([]byte, error) {
	_, dec, err := codecs()
	if err != nil {
		return nil, err
	}
	return dec.DecodeAll(frame, nil)
}

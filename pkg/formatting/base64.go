package formatting

import (
	"encoding/base64"
	"io"
	"strings"
)

// Base64ChunkSize is the copy buffer size used by EncodeBase64.
const Base64ChunkSize = 32 * 1024

// EncodeBase64 streams r into standard base64 through a Base64ChunkSize buffer.
func EncodeBase64(r io.Reader) (string, error) {
	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)

	buf := make([]byte, Base64ChunkSize)
	if _, err := io.CopyBuffer(enc, r, buf); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// DecodeBase64Reader returns a reader that yields the bytes encoded in s.
func DecodeBase64Reader(s string) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, strings.NewReader(s))
}

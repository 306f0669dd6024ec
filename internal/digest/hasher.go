package digest

import (
	"PDFReduce/internal/pkgerror"
	"crypto/md5"  // #nosec G501 -- content identity only, not security
	"crypto/sha1" // #nosec G505 -- content identity only, not security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "SHA256"

// ChunkSize bounds memory use while hashing regardless of file size.
const ChunkSize = 64 << 10 // 64 KiB

func newHasher(algorithm string) (hash.Hash, error) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "SHA256":
		return sha256.New(), nil
	case "SHA1":
		return sha1.New(), nil // #nosec G401
	case "SHA512":
		return sha512.New(), nil
	case "SHA384":
		return sha512.New384(), nil
	case "MD5":
		return md5.New(), nil // #nosec G401
	default:
		return nil, fmt.Errorf("unsupported algorithm: %q", algorithm)
	}
}

// Supported reports whether algorithm names a known digest.
func Supported(algorithm string) bool {
	_, err := newHasher(algorithm)
	return err == nil
}

// FileHashHex streams path through the digest in ChunkSize reads and returns
// lowercase hex. onProgress, if set, receives the byte count of every chunk.
func FileHashHex(fs afero.Fs, path string, algorithm string, onProgress func(n int64)) (string, error) {
	h, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}

	f, err := fs.Open(path)
	if err != nil {
		return "", pkgerror.NewIO(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, ChunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return "", werr
			}
			if onProgress != nil {
				onProgress(int64(n))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", pkgerror.NewIO(path, rerr)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two hex digests ignoring case and surrounding space.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

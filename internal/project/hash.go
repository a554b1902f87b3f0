package project

import (
	"crypto/sha256"
	"io"
	"os"
)

// Digest - фиксированный 256 битный хеш содержимого бандла
type Digest [32]byte

// HashBytes hashes raw bundle bytes.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// HashFile hashes the content of path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Combine builds an aggregate key: H( first || rest... ).
// Порядок должен быть детерминированным: вызывающие сортируют входы заранее.
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

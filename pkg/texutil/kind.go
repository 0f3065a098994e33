package texutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies a supported texture format.
type Kind int

const (
	KindUnknown Kind = iota
	KindBLP
	KindTGA
)

func (k Kind) String() string {
	switch k {
	case KindBLP:
		return "blp"
	case KindTGA:
		return "tga"
	default:
		return "unknown"
	}
}

// KindFromPath classifies a file by its extension, ignoring case.
func KindFromPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".blp":
		return KindBLP
	case ".tga":
		return KindTGA
	default:
		return KindUnknown
	}
}

var (
	blp0Sig = []byte("BLP0")
	blp1Sig = []byte("BLP1")
	blp2Sig = []byte("BLP2")
)

// IsBLPHeader reports whether header starts with one of the BLP magics.
func IsBLPHeader(header []byte) bool {
	return hasPrefix(header, blp0Sig) || hasPrefix(header, blp1Sig) || hasPrefix(header, blp2Sig)
}

// SniffBLP reads the first four bytes of path and reports whether they carry
// a BLP magic.
func SniffBLP(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return IsBLPHeader(header), nil
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}

package listen

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hasher feeds length-prefixed fields into an xxhash digest so that
// adjacent fields can never run together ("ab","c" vs "a","bc").
type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newHasher() *hasher {
	return &hasher{d: xxhash.New()}
}

func (h *hasher) int(n int) {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(n))
	h.d.Write(h.buf[:]) //nolint:errcheck
}

func (h *hasher) string(s string) {
	h.int(len(s))
	h.d.WriteString(s) //nolint:errcheck
}

func (h *hasher) strings(ss []string) {
	h.int(len(ss))
	for _, s := range ss {
		h.string(s)
	}
}

func (h *hasher) sum() uint64 { return h.d.Sum64() }

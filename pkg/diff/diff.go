// Package diff decides whether two files hold different bytes.
package diff

import (
	"bytes"
	"io"
	"os"
)

const chunkSize = 32 * 1024

// Differs reports whether the files at a and b differ in size or in any
// byte. A file that cannot be read counts as different, so a missing target
// always triggers an update.
func Differs(a, b string) bool {
	fa, err := os.Open(a)
	if err != nil {
		return true
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return true
	}
	defer fb.Close()

	ia, err := fa.Stat()
	if err != nil {
		return true
	}
	ib, err := fb.Stat()
	if err != nil {
		return true
	}
	if !ia.Mode().IsRegular() || !ib.Mode().IsRegular() {
		return true
	}
	if ia.Size() != ib.Size() {
		return true
	}

	return !sameContent(fa, fb)
}

func sameContent(a, b io.Reader) bool {
	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)
	for {
		na, errA := io.ReadFull(a, bufA)
		nb, errB := io.ReadFull(b, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA || errB != nil && !doneB {
			return false
		}
		if doneA || doneB {
			return doneA && doneB
		}
	}
}

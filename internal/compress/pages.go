package compress

import (
	"fmt"
	"os"

	"rsc.io/pdf"
)

// PageCount returns the number of pages in the PDF at path. The parser panics
// on some malformed inputs, so those come back as errors.
func PageCount(path string) (n int, err error) {
	f, err := os.Open(path) // #nosec G304 -- caller-provided input document
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parse %s: %v", path, r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

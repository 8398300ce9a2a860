package compiler

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// CountPages returns the number of pages in a PDF document.
func CountPages(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r.NumPage(), nil
}

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PDFToText shells out to poppler's pdftotext binary.
type PDFToText struct {
	binary string
	args   []string
}

// NewPDFToText creates an extractor running the binary at binaryPath.
func NewPDFToText(binaryPath string) *PDFToText {
	return &PDFToText{binary: binaryPath}
}

// WithArgs adds options placed before the input file, e.g. "-layout".
func (p *PDFToText) WithArgs(args ...string) *PDFToText {
	p.args = append(p.args, args...)
	return p
}

// ExtractText runs `pdftotext [args] <path> -` and returns its stdout.
func (p *PDFToText) ExtractText(ctx context.Context, path string) (string, error) {
	args := append(append([]string{}, p.args...), path, "-")
	cmd := exec.CommandContext(ctx, p.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("pdftotext %s: %w", path, err)
		}
		return "", fmt.Errorf("pdftotext %s: %w: %s", path, err, msg)
	}

	return stdout.String(), nil
}

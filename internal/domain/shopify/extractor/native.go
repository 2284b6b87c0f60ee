package extractor

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

// Native extracts text in-process with dslipak/pdf, for hosts without
// poppler installed. Glyphs are grouped into lines by baseline, top to
// bottom, and ordered left to right within a line.
type Native struct{}

// NewNative creates an in-process extractor.
func NewNative() *Native {
	return &Native{}
}

// ExtractText opens the PDF and returns its text, one line per baseline.
func (n *Native) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat pdf %s: %w", path, err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		lines, err := pageLines(page)
		if err != nil {
			return "", fmt.Errorf("extract text from %s page %d: %w", path, i, err)
		}
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}

// pageLines renders one page. The content interpreter panics on malformed
// streams, so that is turned into an error.
func pageLines(page pdf.Page) (lines []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()

	rows := map[float64][]pdf.Text{}
	for _, t := range page.Content().Text {
		y := math.Round(t.Y)
		rows[y] = append(rows[y], t)
	}

	baselines := make([]float64, 0, len(rows))
	for y := range rows {
		baselines = append(baselines, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(baselines)))

	for _, y := range baselines {
		if line := joinGlyphs(rows[y]); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// joinGlyphs orders glyphs left to right. Fonts without width tables place
// every glyph of a string at the same X, so the sort must be stable to keep
// content order.
func joinGlyphs(glyphs []pdf.Text) string {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			// positioned word gap without a space glyph
			if prev.W > 0 && prev.S != " " && g.S != " " && g.X-(prev.X+prev.W) > prev.FontSize*0.2 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return b.String()
}

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const (
	PDFFilename = "roma-barocca-itinerary.pdf"

	pageMargin      = 14.0
	snapshotMaxH    = 150.0
	snapshotMaxPx   = 2400
	tableTopMargin  = 20.0
	tableBottom     = 20.0
	cellPadding     = 2.5
	cellLineHeight  = 5.0
	footerFromEdge  = 20.0
	snapshotImageID = "map-snapshot"
)

var (
	orange    = [3]int{234, 88, 12}
	zinc500   = [3]int{113, 113, 122}
	zinc600   = [3]int{82, 82, 91}
	zinc900   = [3]int{24, 24, 27}
	bodyColor = [3]int{50, 50, 50}
	gridColor = [3]int{200, 200, 200}
)

var tableHeaders = []string{"Ora", "Luogo", "Artisti", "Note"}

// fixed widths for the first three columns, the last one takes the rest
var fixedColumnWidths = []float64{20, 40, 40}

// decodeSnapshot accepts raw base64 or a data URL holding a PNG or JPEG.
func decodeSnapshot(encoded string) (image.Image, error) {
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", types.ErrExportCapture, err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExportCapture, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", types.ErrExportCapture)
	}
	return imaging.Fit(img, snapshotMaxPx, snapshotMaxPx, imaging.Lanczos), nil
}

// fitBox scales a srcW x srcH image to the largest size inside maxW x maxH
// that keeps its aspect ratio.
func fitBox(srcW, srcH int, maxW, maxH float64) (float64, float64) {
	ratio := float64(srcW) / float64(srcH)
	w := maxW
	h := w / ratio
	if h > maxH {
		h = maxH
		w = h * ratio
	}
	return w, h
}

type pdfDocument struct {
	pdf     *fpdf.Fpdf
	tr      func(string) string
	pageW   float64
	pageH   float64
	widths  []float64
	options Options
}

func newPDFDocument(options Options) *pdfDocument {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, tableTopMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Roma Barocca", true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin
	widths := append([]float64{}, fixedColumnWidths...)
	used := 0.0
	for _, w := range fixedColumnWidths {
		used += w
	}
	widths = append(widths, contentW-used)

	return &pdfDocument{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		pageW:   pageW,
		pageH:   pageH,
		widths:  widths,
		options: options,
	}
}

func (d *pdfDocument) contentWidth() float64 { return d.pageW - 2*pageMargin }

func (d *pdfDocument) setColor(c [3]int) { d.pdf.SetTextColor(c[0], c[1], c[2]) }

func (d *pdfDocument) title(title, date string) {
	d.pdf.SetFont("Helvetica", "B", 22)
	d.setColor(orange)
	d.pdf.SetXY(pageMargin, 12)
	d.pdf.MultiCell(d.contentWidth(), 10, d.tr(title), "", "L", false)

	d.pdf.SetFont("Helvetica", "", 10)
	d.setColor(zinc500)
	d.pdf.SetX(pageMargin)
	d.pdf.CellFormat(d.contentWidth(), 6, d.tr("Generato il: "+date), "", 1, "L", false, 0, "")
	d.pdf.Ln(4)
}

func (d *pdfDocument) snapshot(img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("%w: %v", types.ErrExportCapture, err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(snapshotImageID, opts, &buf)
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return fmt.Errorf("%w: %v", types.ErrExportCapture, err)
	}

	b := img.Bounds()
	w, h := fitBox(b.Dx(), b.Dy(), d.contentWidth(), snapshotMaxH)
	x := pageMargin + (d.contentWidth()-w)/2
	y := d.pdf.GetY()
	d.pdf.ImageOptions(snapshotImageID, x, y, w, h, false, opts, 0, "")
	d.pdf.SetY(y + h + 10)
	return nil
}

func (d *pdfDocument) table(stops []types.Stop) {
	d.row(tableHeaders, true)
	for _, s := range stops {
		d.row([]string{s.ArrivalTime, s.Name, strings.Join(s.Artists, ", "), s.Description}, false)
	}
}

func (d *pdfDocument) cellFont(col int, header bool) {
	if header || col < 2 {
		d.pdf.SetFont("Helvetica", "B", 10)
		return
	}
	d.pdf.SetFont("Helvetica", "", 10)
}

func (d *pdfDocument) wrap(cells []string, header bool) ([][]string, int) {
	lines := make([][]string, len(cells))
	maxLines := 1
	for i, cell := range cells {
		d.cellFont(i, header)
		for _, l := range d.pdf.SplitLines([]byte(d.tr(cell)), d.widths[i]-2*cellPadding) {
			lines[i] = append(lines[i], string(l))
		}
		maxLines = max(maxLines, len(lines[i]))
	}
	return lines, maxLines
}

// linesFitting is how many text lines a row started at y can hold above the
// bottom margin.
func (d *pdfDocument) linesFitting(y float64) int {
	return int((d.pageH - tableBottom - y - 2*cellPadding) / cellLineHeight)
}

// rowChunks splits a row of total lines into per-page line counts, given
// room for firstFit lines on the current page and pageFit on each new page.
// A row that fits a fresh page whole moves there instead of splitting; a
// leading zero means nothing is drawn on the current page.
func rowChunks(total, firstFit, pageFit int) []int {
	pageFit = max(pageFit, 1)
	if total <= firstFit {
		return []int{total}
	}

	remaining := total
	var chunks []int
	if total <= pageFit || firstFit < 1 {
		chunks = append(chunks, 0)
	} else {
		chunks = append(chunks, firstFit)
		remaining -= firstFit
	}
	for remaining > 0 {
		n := min(remaining, pageFit)
		chunks = append(chunks, n)
		remaining -= n
	}
	return chunks
}

// row draws one grid row. Rows crossing the bottom margin continue on a new
// page, and body rows repeat the header there first.
func (d *pdfDocument) row(cells []string, header bool) {
	lines, total := d.wrap(cells, header)

	pageFit := d.linesFitting(tableTopMargin)
	if !header {
		_, headerLines := d.wrap(tableHeaders, true)
		pageFit = d.linesFitting(tableTopMargin + float64(headerLines)*cellLineHeight + 2*cellPadding)
	}

	from := 0
	for i, n := range rowChunks(total, d.linesFitting(d.pdf.GetY()), pageFit) {
		if i > 0 {
			d.pdf.AddPage()
			d.pdf.SetY(tableTopMargin)
			if !header {
				d.row(tableHeaders, true)
			}
		}
		if n == 0 {
			continue
		}
		d.drawRow(lines, from, from+n, header)
		from += n
	}
}

// drawRow draws lines [from, to) of every cell as one bordered band.
func (d *pdfDocument) drawRow(lines [][]string, from, to int, header bool) {
	h := float64(to-from)*cellLineHeight + 2*cellPadding
	y := d.pdf.GetY()
	x := pageMargin
	d.pdf.SetDrawColor(gridColor[0], gridColor[1], gridColor[2])
	for i := range lines {
		style := "D"
		if header {
			d.pdf.SetFillColor(zinc900[0], zinc900[1], zinc900[2])
			d.setColor([3]int{255, 255, 255})
			style = "FD"
		} else {
			d.setColor(bodyColor)
		}
		d.pdf.Rect(x, y, d.widths[i], h, style)
		d.cellFont(i, header)
		for n := from; n < to && n < len(lines[i]); n++ {
			d.pdf.SetXY(x+cellPadding, y+cellPadding+float64(n-from)*cellLineHeight)
			d.pdf.CellFormat(d.widths[i]-2*cellPadding, cellLineHeight, lines[i][n], "", 0, "L", false, 0, "")
		}
		x += d.widths[i]
	}
	d.pdf.SetXY(pageMargin, y+h)
}

func (d *pdfDocument) footer() {
	footerY := d.pageH - footerFromEdge
	if d.pdf.GetY() > footerY-6 {
		d.pdf.AddPage()
	}

	d.pdf.SetFont("Helvetica", "I", 10)
	d.setColor(zinc600)
	d.pdf.SetXY(pageMargin, footerY-4)
	d.pdf.CellFormat(d.contentWidth(), 5, d.tr(d.options.CreditLine), "", 1, "L", false, 0, "")

	if d.options.LinkURL == "" {
		return
	}
	d.setColor(orange)
	text := d.tr(d.options.LinkText)
	d.pdf.SetXY(pageMargin, footerY+2)
	d.pdf.CellFormat(d.pdf.GetStringWidth(text)+1, 5, text, "", 1, "L", false, 0, d.options.LinkURL)
}

func (d *pdfDocument) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

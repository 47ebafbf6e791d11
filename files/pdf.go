package files

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-pdf/fpdf"
)

var imageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
}

// ConvertToPDF wraps an image into a single A4 page. PDFs are returned unchanged.
func ConvertToPDF(f *File) (*File, error) {
	mtype := mimetype.Detect(f.Data)
	if mtype.Is("application/pdf") {
		return f, nil
	}
	imageType, ok := imageTypes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("convert %s: %w (%s)", f.Name, ErrUnsupportedType, mtype.String())
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	info := pdf.RegisterImageOptionsReader(f.Name, opts, bytes.NewReader(f.Data))
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("convert %s: %w", f.Name, err)
	}

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	maxW, maxH := pageW-left-right, pageH-top-bottom

	w, h := info.Extent()
	scale := maxW / w
	if h*scale > maxH {
		scale = maxH / h
	}
	w, h = w*scale, h*scale

	pdf.ImageOptions(f.Name, left+(maxW-w)/2, top, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("convert %s: %w", f.Name, err)
	}

	name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".pdf"
	return &File{Name: name, Data: buf.Bytes()}, nil
}

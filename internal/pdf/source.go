// Package pdf turns scanned invoice PDFs into per-page images and manages
// the inbox lifecycle of the files themselves.
package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageImage is one invoice page as an image, ready for the vision model.
type PageImage struct {
	PageNumber int
	Data       []byte
	MIMEType   string
}

// PageImageSource yields the page images of an invoice document.
type PageImageSource interface {
	Pages(ctx context.Context, path string) ([]PageImage, error)
}

// Extractor reads scanned PDFs, where each page is a single full-page scan
// image, and pulls those embedded images out. Pages without an embedded
// image are reported missing rather than failing the document.
type Extractor struct {
	logger *slog.Logger
}

var _ PageImageSource = (*Extractor)(nil)

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Pages returns one image per page in page order. When a page embeds several
// images the largest one wins, since the full-page scan dwarfs any logo.
func (e *Extractor) Pages(ctx context.Context, path string) ([]PageImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("page count of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	byPage := make(map[int]PageImage)
	digest := func(img model.Image, singleImgPerPage bool, maxPageDigits int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image on page %d: %w", img.PageNr, err)
		}
		if prev, ok := byPage[img.PageNr]; ok && len(prev.Data) >= len(data) {
			return nil
		}
		byPage[img.PageNr] = PageImage{
			PageNumber: img.PageNr,
			Data:       data,
			MIMEType:   mimeType(img.FileType),
		}
		return nil
	}
	if err := api.ExtractImages(f, nil, digest, nil); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", path, err)
	}

	pages := make([]PageImage, 0, len(byPage))
	for _, img := range byPage {
		pages = append(pages, img)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	if len(pages) < pageCount {
		e.logger.Warn("pdf.pages.missing_scans", "path", path, "pages", pageCount, "images", len(pages))
	}
	return pages, nil
}

func mimeType(fileType string) string {
	switch fileType {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

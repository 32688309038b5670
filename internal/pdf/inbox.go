package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListInbox returns the PDF files waiting in dir, sorted by name so batch
// runs process invoices in a stable order.
func ListInbox(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox %s: %w", dir, err)
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

// CheckSize fails when the file exceeds the configured limit. Oversized
// scans are almost always a misdropped file, not an invoice.
func CheckSize(path string, maxMB int) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	limit := int64(maxMB) * 1024 * 1024
	if info.Size() > limit {
		return fmt.Errorf("%s is %d bytes, over the %d MB limit", path, info.Size(), maxMB)
	}
	return nil
}

// MoveToProcessed moves a consumed PDF out of the inbox. A name collision in
// the target directory gets a numeric suffix instead of overwriting.
func MoveToProcessed(path, processedDir string) (string, error) {
	base := filepath.Base(path)
	target := filepath.Join(processedDir, base)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(processedDir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
	if err := os.Rename(path, target); err == nil {
		return target, nil
	}
	// Rename fails across filesystems; fall back to copy and delete.
	if err := copyFile(path, target); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", path, target, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove %s after copy: %w", path, err)
	}
	return target, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

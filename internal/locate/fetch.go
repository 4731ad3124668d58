// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/findit/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// FetchResult reports where a downloaded article landed.
type FetchResult struct {
	PDFPath  string
	MetaPath string
	Pages    int
	Skipped  bool
}

// Fetch locates the article's PDF, downloads it to
// papersDir/raw/<pmid>.pdf, verifies that the file parses as a PDF, and
// writes the metadata record to papersDir/metadata/<pmid>.yaml. An
// existing PDF skips the download.
func (e *Engine) Fetch(ctx context.Context, pmid, papersDir string, opts Options) (*FetchResult, error) {
	pdfPath := filepath.Join(papersDir, rawDir, pmid+".pdf")
	metaPath := filepath.Join(papersDir, metadataDir, pmid+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		return &FetchResult{PDFPath: pdfPath, MetaPath: metaPath, Skipped: true}, nil
	}

	m, err := e.meta.FetchArticle(ctx, pmid)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata for %s: %w", pmid, err)
	}

	result := e.LocateMetadata(ctx, m, opts)
	url := result.URL
	if url == "" && result.BackupURL != "" {
		url = result.BackupURL
	}
	if url == "" {
		return nil, fmt.Errorf("no PDF location for %s: %s", pmid, result.Reason)
	}

	for _, dir := range []string{
		filepath.Join(papersDir, rawDir),
		filepath.Join(papersDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := e.downloadFile(ctx, url, pdfPath); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", pmid, err)
	}

	pages, err := verifyPDFFile(pdfPath)
	if err != nil {
		os.Remove(pdfPath)
		return nil, fmt.Errorf("downloaded file for %s is not a usable PDF: %w", pmid, err)
	}

	if err := writeMetadata(m, metaPath); err != nil {
		return nil, fmt.Errorf("writing metadata for %s: %w", pmid, err)
	}

	return &FetchResult{PDFPath: pdfPath, MetaPath: metaPath, Pages: pages}, nil
}

// downloadFile fetches url to destPath through a temporary file so a
// partial download never masquerades as a finished one.
func (e *Engine) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := e.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// verifyPDFFile opens the downloaded file with a real PDF parser and
// returns its page count. Publishers sometimes serve an HTML error page
// with a .pdf name; the byte-signature check at verification time does
// not catch truncated files, this does.
func verifyPDFFile(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := r.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return n, nil
}

func writeMetadata(m *types.ArticleMetadata, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Package dataset loads tabular datasets from CSV files or http(s) URLs.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"tabvec/internal/domain"
)

// Loader reads CSV datasets. The zero value uses a 60 second HTTP timeout.
type Loader struct {
	Client *http.Client
}

// Load reads the CSV at source, a local path or an http(s) URL, and marks
// target as the target column.
func (l *Loader) Load(ctx context.Context, source, target string) (*domain.Dataset, error) {
	if source == "" {
		return nil, errors.New("empty dataset source")
	}
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	ds, err := Read(rc, target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return ds, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}
	return resp.Body, nil
}

// Read parses CSV with a header row. Cells are trimmed of surrounding spaces.
func Read(r io.Reader, target string) (*domain.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	ds := &domain.Dataset{Columns: trimAll(header), Target: target}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, trimAll(rec))
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	// UTF-8 byte order mark from spreadsheet exports
	if len(out) > 0 {
		out[0] = strings.TrimPrefix(out[0], "\ufeff")
	}
	return out
}

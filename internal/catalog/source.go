package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	domainerr "github.com/pbarilla/blog/internal/domain/errors"
)

// Source serves the catalog document and per-post content documents by name.
// A miss is reported as ErrNotFound so callers can tell it apart from
// transport failures.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

type FileSource struct {
	Dir string
}

func (s FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Clean against "/" first so "../" in a name cannot escape Dir.
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.Clean("/"+name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog: %s: %w", name, domainerr.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return data, nil
}

type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: bad url for %s: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: request %s: %w", name, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("catalog: %s: %w", name, domainerr.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog: fetch %s: unexpected status %d", name, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

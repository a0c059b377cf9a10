package modelfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// hostBase is the checkpoint host; artifacts live at
// {hostBase}/{repo}/resolve/main/{file}.
var hostBase = "https://huggingface.co"

// artifactURL builds the download URL for a builtin model.
func artifactURL(m Model) string {
	return fmt.Sprintf("%s/%s/resolve/main/%s", hostBase, m.Repo, m.File)
}

// httpClient has no timeout: artifacts are large and the caller's context
// bounds the request instead.
var httpClient = &http.Client{}

// download fetches the artifact into dir, resuming a partial .part file when
// the host supports range requests, then renames it into place.
func download(ctx context.Context, m Model, dir string) error {
	tmp := filepath.Join(dir, m.File+".part")

	var offset int64
	if info, err := os.Stat(tmp); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL(m), nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	log.Info().Str("model", m.ID).Str("url", artifactURL(m)).Int64("offset", offset).Msg("downloading model artifact")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Full body; any partial progress is discarded.
		offset = 0
	case http.StatusPartialContent:
		// Appending to the .part file.
	default:
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	flag := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(tmp, flag, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if m.SizeBytes > 0 {
		if info, err := os.Stat(tmp); err != nil || info.Size() != m.SizeBytes {
			return fmt.Errorf("artifact size mismatch for %s", m.ID)
		}
	}
	return os.Rename(tmp, m.Path)
}

// Package upload stores processed item photos and returns the reference
// clients use to fetch them.
package upload

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader persists image bytes and returns a retrievable reference
// (a path under the public uploads prefix or an absolute URL).
type Uploader interface {
	Save(ctx context.Context, data []byte, contentType, ext string) (string, error)
}

// newObjectName returns a collision-free file name for an upload.
func newObjectName(ext string) string {
	return uuid.NewString() + ext
}

// Local writes uploads to a directory served by the API under PublicPath.
type Local struct {
	Dir        string
	PublicPath string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, publicPath string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Local{Dir: dir, PublicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

// Save writes data to a new file and returns its public path.
func (l *Local) Save(_ context.Context, data []byte, _ string, ext string) (string, error) {
	name := newObjectName(ext)
	if err := os.WriteFile(filepath.Join(l.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return l.PublicPath + "/" + name, nil
}

// Handler serves stored files. Mount it at PublicPath + "/".
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(l.PublicPath+"/", http.FileServer(noDirFS{http.Dir(l.Dir)}))
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

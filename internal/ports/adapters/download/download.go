// Package download delivers finished artifacts into an output directory.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Dir struct {
	root string
}

func New(root string) *Dir {
	return &Dir{root: root}
}

// Save writes data under the output directory. An existing file of the same
// name is never overwritten; a numeric suffix is added instead.
func (d *Dir) Save(_ context.Context, name string, data []byte) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid download name %q", name)
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		p := filepath.Join(d.root, candidate)
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", err
		}
		return p, f.Close()
	}
}

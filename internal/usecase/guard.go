package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/forPelevin/mediashop/internal/types"
)

// Guard admits at most one job per kind and medium. Inside the process the
// slot is a map entry; across processes it is a lock file in dir.
type Guard struct {
	dir  string
	mu   sync.Mutex
	held map[string]bool
}

// NewGuard returns a Guard. An empty dir limits the guard to this process.
func NewGuard(dir string) *Guard {
	return &Guard{dir: dir, held: map[string]bool{}}
}

// Acquire claims the slot or fails with ErrBusy. The returned release must be
// called exactly once.
func (g *Guard) Acquire(kind types.JobKind, medium types.Medium) (func(), error) {
	key := string(kind) + "-" + string(medium)

	g.mu.Lock()
	if g.held[key] {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBusy, key)
	}
	g.held[key] = true
	g.mu.Unlock()

	var fl *flock.Flock
	if g.dir != "" {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.drop(key)
			return nil, fmt.Errorf("ensure lock dir: %w", err)
		}
		fl = flock.New(filepath.Join(g.dir, key+".lock"))
		locked, err := fl.TryLock()
		if err != nil {
			g.drop(key)
			return nil, fmt.Errorf("acquire %s lock: %w", key, err)
		}
		if !locked {
			g.drop(key)
			return nil, fmt.Errorf("%w: %s (held by another process)", ErrBusy, key)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if fl != nil {
				_ = fl.Unlock()
			}
			g.drop(key)
		})
	}, nil
}

func (g *Guard) drop(key string) {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
}

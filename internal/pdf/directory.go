package pdf

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileInfo describes a PDF found under the served directory
type FileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ScanResult represents the result of a directory scan
type ScanResult struct {
	Root      string        `json:"root"`
	Files     []FileInfo    `json:"files"`
	FromCache bool          `json:"from_cache"`
	ScanTime  time.Duration `json:"-"`
	Truncated bool          `json:"truncated"`
}

type scanEntry struct {
	files     []FileInfo
	truncated bool
	scannedAt time.Time
}

// DirectoryScanner finds PDFs below a root with depth, count and time limits.
// Results are cached per root for ttl.
type DirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
	ttl       time.Duration

	mu    sync.Mutex
	cache map[string]scanEntry
	now   func() time.Time
}

// NewDirectoryScanner creates a scanner; zero limits disable the limit
func NewDirectoryScanner(maxDepth, fileLimit int, timeLimit, ttl time.Duration) *DirectoryScanner {
	return &DirectoryScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
		ttl:       ttl,
		cache:     make(map[string]scanEntry),
		now:       time.Now,
	}
}

// Scan lists the PDFs below root, sorted by path. Hidden entries and
// symlinks are skipped.
func (s *DirectoryScanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	s.mu.Lock()
	entry, ok := s.cache[root]
	s.mu.Unlock()
	if ok && s.now().Sub(entry.scannedAt) <= s.ttl {
		return &ScanResult{Root: root, Files: entry.files, FromCache: true, Truncated: entry.truncated}, nil
	}

	start := s.now()
	w := &walk{scanner: s, start: start, files: []FileInfo{}}
	if err := w.dir(ctx, root, 0); err != nil {
		return nil, err
	}

	sort.Slice(w.files, func(i, j int) bool { return w.files[i].Path < w.files[j].Path })

	s.mu.Lock()
	s.cache[root] = scanEntry{files: w.files, truncated: w.truncated, scannedAt: start}
	s.mu.Unlock()

	return &ScanResult{
		Root:      root,
		Files:     w.files,
		ScanTime:  s.now().Sub(start),
		Truncated: w.truncated,
	}, nil
}

// ClearCache drops all cached scans
func (s *DirectoryScanner) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]scanEntry)
}

type walk struct {
	scanner   *DirectoryScanner
	start     time.Time
	files     []FileInfo
	truncated bool
}

func (w *walk) full() bool {
	s := w.scanner
	if s.fileLimit > 0 && len(w.files) >= s.fileLimit {
		return true
	}
	return s.timeLimit > 0 && s.now().Sub(w.start) > s.timeLimit
}

func (w *walk) dir(ctx context.Context, path string, depth int) error {
	if s := w.scanner; s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		// Unreadable subdirectories are skipped, an unreadable root is not
		if depth == 0 {
			return err
		}
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.full() {
			w.truncated = true
			return nil
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		entryPath := filepath.Join(path, name)
		if entry.IsDir() {
			if err := w.dir(ctx, entryPath, depth+1); err != nil {
				return err
			}
			continue
		}

		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		w.files = append(w.files, FileInfo{
			Name:         name,
			Path:         entryPath,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	return nil
}

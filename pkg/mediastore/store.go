package mediastore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// filePrefix marks artifacts created by a Store so Sweep never touches foreign files.
const filePrefix = "tb-"

// Item is an artifact that is currently owned by a pipeline run.
type Item struct {
	Path       string    `json:"path"`
	ReservedAt time.Time `json:"reserved_at"`
}

type Stats struct {
	Dir         string `json:"dir"`
	InFlight    int    `json:"in_flight"`
	FilesOnDisk int    `json:"files_on_disk"`
	BytesOnDisk string `json:"bytes_on_disk"`
	Swept       int64  `json:"swept"`
}

// Store hands out unique temporary files for downloaded media and keeps
// track of the ones still in use.
type Store struct {
	dir string

	mu       sync.Mutex
	inFlight map[string]Item
	swept    int64
}

func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("mediastore: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mediastore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, inFlight: make(map[string]Item)}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Reserve creates an empty file with a name no other run can get. The
// caller owns the returned file and must hand its path to Release.
func (s *Store) Reserve(hint string) (*os.File, error) {
	ext := filepath.Ext(filepath.Base(hint))
	f, err := os.CreateTemp(s.dir, filePrefix+uuid.NewString()+"-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("mediastore: reserve: %w", err)
	}

	s.mu.Lock()
	s.inFlight[f.Name()] = Item{Path: f.Name(), ReservedAt: time.Now()}
	s.mu.Unlock()
	return f, nil
}

// Release removes the artifact from disk and from the in-flight manifest.
// Missing files are not an error.
func (s *Store) Release(path string) error {
	s.mu.Lock()
	delete(s.inFlight, path)
	s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warnf("[MEDIASTORE] failed to remove %s", path)
		return err
	}
	return nil
}

func (s *Store) InFlight() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.inFlight))
	for _, it := range s.inFlight {
		items = append(items, it)
	}
	return items
}

// Sweep removes artifacts older than maxAge that no run currently owns.
// Files left behind by a crashed process are picked up this way.
func (s *Store) Sweep(maxAge time.Duration) (removed int, err error) {
	cutoff := time.Now().Add(-maxAge)

	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"))
	if err != nil {
		return 0, err
	}

	var freed int64
	for _, match := range matches {
		s.mu.Lock()
		_, busy := s.inFlight[match]
		s.mu.Unlock()
		if busy {
			continue
		}

		info, statErr := os.Stat(match)
		if statErr != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if rmErr := os.Remove(match); rmErr != nil {
			logrus.WithError(rmErr).Warnf("[MEDIASTORE] failed to sweep %s", match)
			continue
		}
		removed++
		freed += info.Size()
	}

	if removed > 0 {
		s.mu.Lock()
		s.swept += int64(removed)
		s.mu.Unlock()
		logrus.Infof("[MEDIASTORE] swept %d orphaned artifact(s), freed %s", removed, humanize.IBytes(uint64(freed)))
	}
	return removed, nil
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	inFlight := len(s.inFlight)
	swept := s.swept
	s.mu.Unlock()

	var files int
	var total int64
	matches, _ := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"))
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && !info.IsDir() {
			files++
			total += info.Size()
		}
	}

	return Stats{
		Dir:         s.dir,
		InFlight:    inFlight,
		FilesOnDisk: files,
		BytesOnDisk: humanize.IBytes(uint64(total)),
		Swept:       swept,
	}
}

package state

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/citegraph/internal/pathutil"
	"github.com/Paintersrp/citegraph/internal/store/file"
)

type LibraryChangedMsg struct {
	Path string
}

type LibraryWatcherErrMsg struct {
	Err error
}

// LibraryWatcher reports edits to paper files and the relationships file of
// a file backed library.
type LibraryWatcher struct {
	watcher   *fsnotify.Watcher
	root      string
	done      chan struct{}
	once      sync.Once
	mu        sync.Mutex
	pending   []tea.Msg
	heartbeat func() tea.Cmd
	interval  time.Duration
	onChange  func(string)
	onClose   func()
}

func NewLibraryWatcher(dir string) (*LibraryWatcher, error) {
	root := pathutil.NormalizePath(dir)
	if root == "" {
		return nil, errors.New("library directory cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watcher := &LibraryWatcher{
		watcher: w,
		root:    root,
		done:    make(chan struct{}),
	}

	if err := watcher.addRecursive(root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go watcher.forward()
	return watcher, nil
}

// forward drains fsnotify for callers that never start a Bubble Tea loop so
// OnChange still fires.
func (w *LibraryWatcher) forward() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if msg := w.handle(event); msg != nil {
				w.enqueuePending(msg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.enqueuePending(LibraryWatcherErrMsg{Err: err})
			}
		}
	}
}

func (w *LibraryWatcher) handle(event fsnotify.Event) tea.Msg {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return nil
		}
	}

	if !w.isRelevant(event) {
		return nil
	}

	rel, err := w.relativePath(event.Name)
	if err != nil || rel == "" {
		return nil
	}

	w.mu.Lock()
	onChange := w.onChange
	w.mu.Unlock()
	if onChange != nil {
		onChange(rel)
	}
	return LibraryChangedMsg{Path: rel}
}

// Next returns a command that resolves with the next change message, or
// with the heartbeat message when the interval elapses first.
func (w *LibraryWatcher) Next() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		hb, interval := w.heartbeatConfig()
		var ticks <-chan time.Time
		if hb != nil && interval > 0 {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			ticks = ticker.C
		}

		poll := time.NewTicker(100 * time.Millisecond)
		defer poll.Stop()

		for {
			if msg := w.dequeuePending(); msg != nil {
				return msg
			}
			select {
			case <-w.done:
				return nil
			case <-ticks:
				if msg := invokeHeartbeat(hb); msg != nil {
					return msg
				}
			case <-poll.C:
			}
		}
	}
}

func (w *LibraryWatcher) heartbeatConfig() (func() tea.Cmd, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.heartbeat, w.interval
}

func invokeHeartbeat(fn func() tea.Cmd) tea.Msg {
	if fn == nil {
		return nil
	}
	cmd := fn()
	if cmd == nil {
		return nil
	}
	return cmd()
}

func (w *LibraryWatcher) enqueuePending(msg tea.Msg) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// Only the latest change matters to consumers that reload everything.
	if _, ok := msg.(LibraryChangedMsg); ok && len(w.pending) > 0 {
		if _, last := w.pending[len(w.pending)-1].(LibraryChangedMsg); last {
			w.pending[len(w.pending)-1] = msg
			return
		}
	}
	w.pending = append(w.pending, msg)
}

func (w *LibraryWatcher) dequeuePending() tea.Msg {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	msg := w.pending[0]
	w.pending = w.pending[1:]
	return msg
}

func (w *LibraryWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
		w.mu.Lock()
		onClose := w.onClose
		w.mu.Unlock()
		if onClose != nil {
			onClose()
		}
	})

	return closeErr
}

// OnChange registers a callback that receives library relative paths
// whenever the watcher detects a relevant change.
func (w *LibraryWatcher) OnChange(fn func(string)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// OnClose registers a callback that is invoked exactly once when the watcher
// shuts down.
func (w *LibraryWatcher) OnClose(fn func()) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = fn
}

// SetHeartbeat configures a command invoked whenever the periodic ticker of
// Next fires.
func (w *LibraryWatcher) SetHeartbeat(fn func() tea.Cmd, interval time.Duration) {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.heartbeat = fn
	w.interval = interval
}

func (w *LibraryWatcher) addRecursive(root string) error {
	normalized := pathutil.NormalizePath(root)
	return filepath.WalkDir(normalized, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}

		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != normalized {
			return filepath.SkipDir
		}

		return w.watcher.Add(path)
	})
}

func (w *LibraryWatcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	rel, err := w.relativePath(event.Name)
	if err != nil || rel == "" {
		return false
	}
	return IsLibraryFile(rel)
}

// IsLibraryFile reports whether a library relative path holds corpus data.
// Hidden files, including the temporary files of atomic writes, are ignored.
func IsLibraryFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if rel == file.RelationshipsFile {
		return true
	}
	return strings.HasPrefix(rel, file.PapersDir+"/") && strings.EqualFold(filepath.Ext(rel), ".md")
}

func (w *LibraryWatcher) relativePath(path string) (string, error) {
	normalized := pathutil.NormalizePath(path)
	rel, err := pathutil.LibraryRelative(w.root, normalized)
	if err != nil {
		return "", err
	}

	if rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return "", nil
	}

	return rel, nil
}

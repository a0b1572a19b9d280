package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/core"
)

// KernelWatcher reports writes to a single kernel source file. The parent
// directory is watched so editors that replace the file on save are seen.
// Changes coalesce: a pending notification absorbs later ones until it is
// received.
type KernelWatcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup

	mutex    sync.Mutex
	isClosed bool
}

func NewKernelWatcher(path string) (*KernelWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &KernelWatcher{
		path:     abs,
		fsnotify: fsWatch,
		changes:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	core.LogInfo("watching kernel source %s", abs)
	return w, nil
}

// Changes delivers the path of the kernel file each time it is written.
func (w *KernelWatcher) Changes() <-chan string {
	return w.changes
}

func (w *KernelWatcher) Path() string {
	return w.path
}

func (w *KernelWatcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return errors.New("kernel watcher already closed")
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *KernelWatcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			select {
			case w.changes <- w.path:
			default:
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("kernel watcher: %s", err)

		case <-w.done:
			return
		}
	}
}

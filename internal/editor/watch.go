package editor

import "github.com/fsnotify/fsnotify"

// watch marks tabs whose backing files change on disk. The mark is surfaced
// through Tab.ExternallyChanged and cleared by the next save.
func (w *Workspace) watch() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.markExternal(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Workspace) markExternal(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, tab := range w.tabs {
		if tab.Path != path {
			continue
		}
		if !tab.external {
			tab.external = true
			w.logger.Warn("file changed on disk", "path", path)
		}
	}
}

// Package watcher notices when asset roots appear, disappear or change.
//
// A RootWatcher watches each configured root and its parent directory, so
// that mounting or unmounting an external root is seen as well as edits to
// the files inside it. fsnotify is the primary mechanism; when it cannot be
// initialized the watcher falls back to polling directory listings.
//
// Events are debounced so that a build rewriting many shard files produces
// a single batch.
//
// Usage:
//
//	w, err := watcher.NewRootWatcher([]string{"/apps_data/bible", "./assets"}, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	go w.Start(ctx)
//
//	for batch := range w.Changes() {
//	    res := locator.Resolve()
//	    ...
//	}
package watcher

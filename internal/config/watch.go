package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// BufferCapSetter receives a live-reloaded maxBufferBytes value. Registry
// implements this.
type BufferCapSetter interface {
	SetMaxBufferBytes(n int)
}

// Watch watches path for writes and creates and, on each such event, reloads
// the config and pushes its maxBufferBytes (if set) into setter. It never
// touches sessions or windows directly. It returns only if the watcher
// cannot be set up or its channels close; otherwise callers run it in a
// goroutine and let process exit tear it down. Watch errors and failed
// reloads are logged and otherwise ignored, since a misbehaving reload must
// never take down the daemon.
func Watch(path string, setter BufferCapSetter) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("ptysidecar: config watch disabled: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		log.Printf("ptysidecar: config watch disabled for %s: %v", path, err)
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				log.Printf("ptysidecar: config reload failed: %v", err)
				continue
			}
			if cfg.MaxBufferBytes > 0 {
				setter.SetMaxBufferBytes(cfg.MaxBufferBytes)
				log.Printf("ptysidecar: config reload: maxBufferBytes=%d", cfg.MaxBufferBytes)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("ptysidecar: config watch error: %v", err)
		}
	}
}

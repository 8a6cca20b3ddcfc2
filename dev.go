package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/c8/emu"
)

// devMode runs romFile and reloads it whenever it changes on disk.
// If debug is set the debugger takes over the terminal.
func devMode(cfg emu.Config, debug bool, romFile string) error {
	romFile = filepath.Clean(romFile)
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	var (
		d     *debugger
		state emu.StateFunc
	)
	if debug {
		d = newDebugger()
		state = d.StateFunc
	}
	runner := emu.NewRunner(cfg, state)
	if d != nil {
		d.run = runner
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("c8: ")
			runner.Exit()
		}()
	}

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				rom, err := os.ReadFile(romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reload %s", filepath.Base(romFile))
				if err := runner.Swap(rom); err != nil {
					log.Printf("dev: %v", err)
				}
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			case <-runner.Done():
				return
			}
		}
	}()

	log.Printf("dev: start %s", filepath.Base(romFile))
	err = runner.Run(rom)
	if d != nil {
		d.Stop()
	}
	return err
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/howeyc/fsnotify"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/internal/imageio"
	"github.com/qrsnap/qrsnap/scan"
	"github.com/qrsnap/qrsnap/urlnorm"
)

type decoder struct {
	fs      afero.Fs
	backend scan.Backend
	out     io.Writer
	names   bool
	urls    bool
}

// decodeAll decodes paths with at most jobs in flight and prints the results
// in argument order. It reports whether every file decoded.
func (d *decoder) decodeAll(ctx context.Context, paths []string, jobs int) bool {
	results := make([]*qrsnap.Result, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i], errs[i] = d.decodeFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	for i, path := range paths {
		if errs[i] != nil {
			log.Printf("%s: %v", path, errs[i])
			ok = false
			continue
		}
		d.print(path, results[i])
	}
	return ok
}

// decodeFile decodes one file, turning a decoder panic into an error.
func (d *decoder) decodeFile(ctx context.Context, path string) (res *qrsnap.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	img, err := imageio.DecodeFile(d.fs, path)
	if err != nil {
		return nil, err
	}
	return d.backend.Decode(ctx, img)
}

func (d *decoder) print(path string, res *qrsnap.Result) {
	text := res.Text
	if d.urls && urlnorm.IsURL(text) {
		text = urlnorm.Normalize(res.Bytes)
	}
	if d.names {
		fmt.Fprintf(d.out, "%s: %s\n", path, text)
		return
	}
	fmt.Fprintln(d.out, text)
}

// watch decodes images created or rewritten in dirs until ctx is done.
func (d *decoder) watch(ctx context.Context, dirs []string) error {
	watcher, err := watchDirs(dirs)
	if err != nil {
		return err
	}
	defer watcher.Close()
	return d.watchLoop(ctx, watcher)
}

func watchDirs(dirs []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Watch(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return watcher, nil
}

func (d *decoder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) error {
	// A file is usually reported once on create and again as it is written;
	// only a changed payload is printed again.
	last := make(map[string]string)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-watcher.Event:
			if ev == nil {
				return nil
			}
			if !(ev.IsCreate() || ev.IsModify()) || !imageio.IsImageFile(ev.Name) {
				continue
			}
			res, err := d.decodeFile(ctx, ev.Name)
			if err != nil {
				log.Printf("%s: %v", ev.Name, err)
				continue
			}
			if last[ev.Name] == res.Text {
				continue
			}
			last[ev.Name] = res.Text
			d.print(ev.Name, res)
		case err := <-watcher.Error:
			if err == nil {
				return nil
			}
			log.Println("watcher error:", err)
		}
	}
}

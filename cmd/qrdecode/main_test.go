package main

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goqrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/afero"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/scan"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		desc    string
		args    []string
		wantErr bool
		check   func(*testing.T, *options)
	}{
		{
			desc: "defaults",
			args: []string{"qrdecode", "a.png"},
			check: func(t *testing.T, o *options) {
				if o.cells != qrsnap.DefaultCellsPerSide || o.jobs != 4 || o.pure || o.platform {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			desc: "short flags",
			args: []string{"qrdecode", "-pruP", "-c", "8", "-j2", "a.png", "b.png"},
			check: func(t *testing.T, o *options) {
				if !o.pure || !o.raw || !o.urls || !o.platform || o.cells != 8 || o.jobs != 2 {
					t.Errorf("options = %+v", o)
				}
				if len(o.files) != 2 {
					t.Errorf("files = %v", o.files)
				}
			},
		},
		{
			desc: "long flags",
			args: []string{"qrdecode", "--max-pixels=1000", "--watch", "dir"},
			check: func(t *testing.T, o *options) {
				if o.maxPixels != 1000 || !o.watch {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			desc: "help without files",
			args: []string{"qrdecode", "-h"},
			check: func(t *testing.T, o *options) {
				if !o.help {
					t.Error("help not set")
				}
			},
		},
		{desc: "no files", args: []string{"qrdecode"}, wantErr: true},
		{desc: "zero jobs", args: []string{"qrdecode", "-j", "0", "a.png"}, wantErr: true},
		{desc: "unknown flag", args: []string{"qrdecode", "-z", "a.png"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			o, _, err := parseArgs(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseArgs(%v) succeeded", tc.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs(%v): %v", tc.args, err)
			}
			tc.check(t, o)
		})
	}
}

func writeCode(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	data, err := goqrcode.Encode(content, goqrcode.Medium, 256)
	if err != nil {
		t.Fatalf("goqrcode.Encode: %v", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDecodeAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCode(t, fs, "/img/a.png", "first")
	writeCode(t, fs, "/img/b.png", "http://example.com/b")
	if err := afero.WriteFile(fs, "/img/bad.png", []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		desc   string
		paths  []string
		names  bool
		wantOK bool
		want   string
	}{
		{
			desc:   "named",
			paths:  []string{"/img/a.png", "/img/b.png"},
			names:  true,
			wantOK: true,
			want:   "/img/a.png: first\n/img/b.png: http://example.com/b\n",
		},
		{
			desc:   "raw",
			paths:  []string{"/img/b.png", "/img/a.png"},
			wantOK: true,
			want:   "http://example.com/b\nfirst\n",
		},
		{
			desc:  "one failure",
			paths: []string{"/img/a.png", "/img/bad.png", "/img/missing.png"},
			want:  "first\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			var out bytes.Buffer
			d := &decoder{
				fs:      fs,
				backend: scan.NewEngineBackend(nil),
				out:     &out,
				names:   tc.names,
				urls:    true,
			}
			if ok := d.decodeAll(context.Background(), tc.paths, 2); ok != tc.wantOK {
				t.Errorf("decodeAll ok = %v, want %v", ok, tc.wantOK)
			}
			if out.String() != tc.want {
				t.Errorf("output = %q, want %q", out.String(), tc.want)
			}
		})
	}
}

type panicBackend struct{}

func (panicBackend) Decode(context.Context, image.Image) (*qrsnap.Result, error) {
	panic("boom")
}

func TestDecodeFileRecovers(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCode(t, fs, "/a.png", "x")
	d := &decoder{fs: fs, backend: panicBackend{}}
	_, err := d.decodeFile(context.Background(), "/a.png")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("decodeFile error = %v, want recovered panic", err)
	}
}

func TestPrintNormalizesURLs(t *testing.T) {
	var out bytes.Buffer
	d := &decoder{out: &out, urls: true}
	payload := []byte("http://example.com/caf\xe9")
	d.print("x.png", qrsnap.NewResult("http://example.com/café", payload, nil, nil))
	if got, want := out.String(), "http%3A//example.com/caf%E9\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSuffix(b.buf.String(), "\n"), "\n")
}

func (b *lockedBuffer) waitLines(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		lines := b.lines()
		if len(lines) >= n && lines[n-1] != "" {
			return lines
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d lines, have %q", n, lines)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	osFs := afero.NewOsFs()
	out := &lockedBuffer{}
	d := &decoder{fs: osFs, backend: scan.NewEngineBackend(nil), out: out}

	watcher, err := watchDirs([]string{dir})
	if err != nil {
		t.Fatalf("watchDirs: %v", err)
	}
	defer watcher.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.watchLoop(ctx, watcher) }()

	path := filepath.Join(dir, "a.png")
	writeCode(t, osFs, path, "first payload")
	out.waitLines(t, 1)

	// Same payload again, then a file the filter skips, then a new payload.
	writeCode(t, osFs, path, "first payload")
	if err := afero.WriteFile(osFs, filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	writeCode(t, osFs, path, "second payload")
	out.waitLines(t, 2)

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchLoop: %v", err)
	}
	want := []string{"first payload", "second payload"}
	lines := out.lines()
	if len(lines) != len(want) {
		t.Fatalf("output lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

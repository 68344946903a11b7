package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"vc8/bitbyte"
	"vc8/vm"
)

// filePorts backs each of the eight ports with a single-byte file under a
// directory, for experimenting with an external process driving I/O by
// writing to those files. This is glue outside the VM core: vm.Ports only
// promises byte-addressable Read/Write, and filePorts is one way to satisfy
// that contract from the command line.
type filePorts struct {
	dir    string
	memory *vm.MemoryPorts
}

func newFilePorts(ctx context.Context, dir string) (*filePorts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vc8: creating ports directory %s: %w", dir, err)
	}
	fp := &filePorts{dir: dir, memory: vm.NewMemoryPorts()}

	g, gctx := errgroup.WithContext(ctx)
	for port := uint8(0); port < vm.NumPorts; port++ {
		port := port
		g.Go(func() error { return fp.watch(gctx, port) })
	}
	// Watchers run for the lifetime of the program. A watcher skips a port
	// file it cannot read or parse and returns only when ctx is cancelled,
	// so the group is not awaited here.
	go func() {
		if err := g.Wait(); err != nil && ctx.Err() == nil {
			fmt.Fprintln(os.Stderr, "vc8: port watcher stopped:", err)
		}
	}()

	return fp, nil
}

func (fp *filePorts) path(port uint8) string {
	return filepath.Join(fp.dir, fmt.Sprintf("port%d", port))
}

func (fp *filePorts) watch(ctx context.Context, port uint8) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			data, err := os.ReadFile(fp.path(port))
			if err != nil {
				continue
			}
			if len(data) == 0 {
				continue
			}
			b, err := bitbyte.FromString(string(data))
			if err != nil {
				continue
			}
			fp.memory.Write(port, b)
		}
	}
}

// Read satisfies vm.Ports.
func (fp *filePorts) Read(port uint8) bitbyte.Byte {
	return fp.memory.Read(port)
}

// Write satisfies vm.Ports and mirrors the value out to the backing file so
// an external reader can observe it.
func (fp *filePorts) Write(port uint8, v bitbyte.Byte) {
	fp.memory.Write(port, v)
	_ = os.WriteFile(fp.path(port), []byte(v.String()), 0o644)
}

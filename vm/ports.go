package vm

import (
	"sync"

	"vc8/bitbyte"
)

// NumPorts is the fixed number of memory-mapped I/O ports.
const NumPorts = 8

// Ports is the byte-addressable I/O surface the VM core needs: eight cells
// that some external collaborator (a test, a CLI flag backed by files, a
// TUI) may also be reading or writing concurrently. Host-filesystem binding
// lives outside this package entirely; MemoryPorts is the only
// implementation the core depends on.
type Ports interface {
	Read(port uint8) bitbyte.Byte
	Write(port uint8, v bitbyte.Byte)
}

// MemoryPorts is an in-process, concurrency-safe implementation of Ports.
// The mutex exists because cmd/vc8's optional file-backed glue runs a
// watcher goroutine per port alongside the VM's own execution goroutine.
type MemoryPorts struct {
	mu    sync.Mutex
	cells [NumPorts]bitbyte.Byte
}

// NewMemoryPorts returns a zeroed set of ports.
func NewMemoryPorts() *MemoryPorts {
	return &MemoryPorts{}
}

// Read returns the current value of a port.
func (p *MemoryPorts) Read(port uint8) bitbyte.Byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cells[port%NumPorts]
}

// Write stores a value into a port.
func (p *MemoryPorts) Write(port uint8, v bitbyte.Byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cells[port%NumPorts] = v
}

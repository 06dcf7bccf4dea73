// Package clipboard abstracts the host system clipboard so text can be
// relayed between a client and the machine running the server.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Service reads and writes the host clipboard.
type Service interface {
	Read() (string, error)
	Write(text string) error
}

type system struct{}

// System returns a Service backed by the host clipboard.
func System() Service {
	return system{}
}

func (system) Read() (string, error) {
	return clipboard.ReadAll()
}

func (system) Write(text string) error {
	return clipboard.WriteAll(text)
}

// Memory is an in-process Service for tests and clipboard-less hosts.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

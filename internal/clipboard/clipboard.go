// Package clipboard copies response payloads to the system clipboard,
// falling back to OSC52 escape sequences when running over SSH.
package clipboard

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Service handles clipboard writes.
type Service struct {
	useOSC52 bool
	osc52Out io.Writer // terminal the OSC52 sequence is written to
}

// NewService creates a clipboard service, auto-detecting SSH sessions.
func NewService() *Service {
	useOSC52 := os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != ""
	return &Service{useOSC52: useOSC52, osc52Out: os.Stderr}
}

// Copy writes text to the clipboard.
func (s *Service) Copy(text string) error {
	if s.useOSC52 {
		_, err := osc52.New(text).WriteTo(s.osc52Out)
		return err
	}
	return clipboard.WriteAll(text)
}

// IsSSH reports whether the OSC52 fallback is active.
func (s *Service) IsSSH() bool {
	return s.useOSC52
}

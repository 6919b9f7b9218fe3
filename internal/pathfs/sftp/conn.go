// Package sftp implements pathfs.Path over SFTP, reusing a single
// persistent "control master" connection per host (spec.md §4.8, §GLOSSARY).
// Grounded in rclone's backend/sftp (sshClient/sshSession abstraction over
// golang.org/x/crypto/ssh + github.com/pkg/sftp) and in
// thyth-nosshtradamus's internal/sshproxy, which holds one live SSH session
// open across many calls rather than dialing per command.
package sftp

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// aliveCheckInterval is how often the keepalive probe (probeLocked) is
// allowed to run; the spec's "5-second" aliveness check is resolved here as
// synchronous-at-next-operation once stale, per spec.md §9's Open Question
// (favoring correctness over staleness).
const aliveCheckInterval = 5 * time.Second

// controlMaster is the single persistent connection shared by every path
// targeting one host (spec.md §GLOSSARY "control master").
type controlMaster struct {
	mu          sync.Mutex
	host        string
	client      *ssh.Client
	sftpClient  *sftp.Client
	lastChecked time.Time
	dial        func() (*ssh.Client, error)
}

// registry caches one controlMaster per host address, so every SFTP Path
// for the same host shares the connection (spec.md §5 "SFTP connections
// are shared across all operations targeting the same host").
var (
	registryMu sync.Mutex
	registry   = map[string]*controlMaster{}
)

func masterFor(host string, dial func() (*ssh.Client, error)) *controlMaster {
	registryMu.Lock()
	defer registryMu.Unlock()
	if m, ok := registry[host]; ok {
		return m
	}
	m := &controlMaster{host: host, dial: dial}
	registry[host] = m
	return m
}

// getClient returns a live *sftp.Client, dialing on first use; once
// aliveCheckInterval has passed since the last check it probes the
// connection and reconnects if the probe fails. The retry-once of a
// failed operation (spec.md §4.8) is done by withRetry.
func (m *controlMaster) getClient() (*sftp.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sftpClient == nil {
		if err := m.connectLocked(); err != nil {
			return nil, err
		}
	} else if time.Since(m.lastChecked) >= aliveCheckInterval {
		if err := m.probeLocked(); err != nil {
			m.closeLocked()
			if err := m.connectLocked(); err != nil {
				return nil, err
			}
		}
	}
	return m.sftpClient, nil
}

func (m *controlMaster) connectLocked() error {
	client, err := m.dial()
	if err != nil {
		return fmt.Errorf("sftp: dial %s: %w", m.host, err)
	}
	sc, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return fmt.Errorf("sftp: new client %s: %w", m.host, err)
	}
	m.client = client
	m.sftpClient = sc
	m.lastChecked = time.Now()
	return nil
}

// probeLocked sends a lightweight no-op (a Getwd, standing in for
// SendKeepAlive@openssh.com in rclone's internal ssh client) to detect a
// dead control socket without waiting for an operation to fail outright.
func (m *controlMaster) probeLocked() error {
	_, err := m.sftpClient.Getwd()
	m.lastChecked = time.Now()
	return err
}

func (m *controlMaster) closeLocked() {
	if m.sftpClient != nil {
		m.sftpClient.Close()
	}
	if m.client != nil {
		m.client.Close()
	}
	m.sftpClient = nil
	m.client = nil
}

// withRetry runs fn against the shared client and, if fn returns any
// error, reconnects and runs it once more.
func (m *controlMaster) withRetry(fn func(*sftp.Client) error) error {
	c, err := m.getClient()
	if err != nil {
		return err
	}
	err = fn(c)
	if err == nil {
		return nil
	}
	m.mu.Lock()
	m.closeLocked()
	m.mu.Unlock()
	c, err2 := m.getClient()
	if err2 != nil {
		return err
	}
	return fn(c)
}

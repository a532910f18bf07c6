package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shortfactory/internal/logging"
)

// maxOtherPerm masks the group/other permission bits; a credential file
// with any of them set is refused rather than read.
const maxOtherPerm = 0o077

// Manager loads credential files from a single restricted directory,
// logging every access (never the credential value itself).
type Manager struct {
	dir    string
	logger *slog.Logger
}

// NewManager returns a Manager rooted at dir. dir must already exist with
// 0700 permissions; config.Config.EnsureDirectories creates it that way.
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{dir: strings.TrimSpace(dir), logger: logger}
}

// ReadFile reads the named credential file from the managed directory,
// refusing to read it if its permissions expose it to group or other.
func (m *Manager) ReadFile(name string) ([]byte, error) {
	if m.dir == "" {
		return nil, errors.New("secrets: credential directory not configured")
	}
	path := filepath.Join(m.dir, name)

	info, err := os.Stat(path)
	if err != nil {
		m.logAccess(name, false, err)
		return nil, fmt.Errorf("secrets: stat credential %q: %w", name, err)
	}
	if info.Mode().Perm()&maxOtherPerm != 0 {
		err := fmt.Errorf("secrets: credential %q has overly permissive mode %s", name, info.Mode().Perm())
		m.logAccess(name, false, err)
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		m.logAccess(name, false, err)
		return nil, fmt.Errorf("secrets: read credential %q: %w", name, err)
	}
	m.logAccess(name, true, nil)
	return data, nil
}

// ReadToken reads a credential file and returns it as a trimmed string,
// for bearer tokens and single-line API keys stored on disk rather than in
// config.toml.
func (m *Manager) ReadToken(name string) (string, error) {
	data, err := m.ReadFile(name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (m *Manager) logAccess(name string, success bool, err error) {
	attrs := []any{slog.String("credential", name), slog.Bool("success", success)}
	if err != nil {
		m.logger.Warn("credential access failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	m.logger.Debug("credential accessed", attrs...)
}

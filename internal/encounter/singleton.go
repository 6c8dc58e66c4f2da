package encounter

import "sync"

var (
	installMu sync.Mutex
	installed *Manager
)

// Install makes m the process-wide manager. Only the first call wins; later
// managers are discarded and the installed one is returned.
func Install(m *Manager) *Manager {
	installMu.Lock()
	defer installMu.Unlock()

	if installed != nil {
		if m != nil && m != installed {
			m.log.Debug("encounter manager already installed; discarding duplicate")
		}
		return installed
	}
	installed = m
	return installed
}

// Instance returns the installed manager, or nil before Install.
func Instance() *Manager {
	installMu.Lock()
	defer installMu.Unlock()
	return installed
}

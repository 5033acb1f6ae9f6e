package permission

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/tallyledger/internal/model"
)

// PinVerifier checks a PIN for a user
type PinVerifier interface {
	Verify(user, pin string) bool
}

// Gate decides whether an actor may act on a target user.
// Sessions are kept in memory only and survive until Logout.
type Gate struct {
	pins   PinVerifier
	logger *slog.Logger

	mu            sync.RWMutex
	admins        map[string]struct{}
	publicDevices map[string]struct{}
	sessions      map[string]string // device identity id -> target user
}

// New creates a gate with the given admin and public device names
func New(pins PinVerifier, admins, publicDevices []string, logger *slog.Logger) *Gate {
	return &Gate{
		pins:          pins,
		logger:        logger,
		admins:        toSet(admins),
		publicDevices: toSet(publicDevices),
		sessions:      make(map[string]string),
	}
}

// Check returns nil when actor may act on target. An empty target denotes a
// global operation, which only admins may perform.
func (g *Gate) Check(actor model.Actor, target string) error {
	if actor.System {
		return nil
	}

	g.mu.RLock()
	_, isAdmin := g.admins[actor.Name]
	_, isPublic := g.publicDevices[actor.Name]
	session := g.sessions[actor.ID]
	g.mu.RUnlock()

	if isAdmin {
		return nil
	}
	if target == "" {
		return model.ErrUnauthorized
	}
	if actor.Name == target {
		return nil
	}
	if isPublic {
		if actor.PIN != "" && g.pins.Verify(target, actor.PIN) {
			g.setSession(actor.ID, target)
			return nil
		}
		if session == target {
			return nil
		}
	}

	g.logger.Warn("permission denied",
		slog.String("actor", actor.Name),
		slog.String("target", target))
	return model.ErrUnauthorized
}

// Login authenticates device as user. A wrong PIN returns false without an
// error; only non-public devices are rejected with ErrUnauthorized.
func (g *Gate) Login(device model.Identity, user, pin string) (bool, error) {
	if !g.IsPublicDevice(device.Name) {
		return false, model.ErrUnauthorized
	}
	if !g.pins.Verify(user, pin) {
		g.logger.Info("login failed", slog.String("device", device.Name), slog.String("user", user))
		return false, nil
	}
	g.setSession(device.ID, user)
	g.logger.Info("login", slog.String("device", device.Name), slog.String("user", user))
	return true, nil
}

// Logout clears any session held by device
func (g *Gate) Logout(device model.Identity) {
	g.mu.Lock()
	delete(g.sessions, device.ID)
	g.mu.Unlock()
}

// SessionUser returns the user device is logged in as
func (g *Gate) SessionUser(device model.Identity) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	user, ok := g.sessions[device.ID]
	return user, ok
}

// DropUser ends every session targeting user
func (g *Gate) DropUser(user string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for device, target := range g.sessions {
		if target == user {
			delete(g.sessions, device)
		}
	}
}

func (g *Gate) setSession(deviceID, user string) {
	g.mu.Lock()
	g.sessions[deviceID] = user
	g.mu.Unlock()
}

// Role lists

// IsAdmin reports whether name is an override user
func (g *Gate) IsAdmin(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.admins[name]
	return ok
}

// IsPublicDevice reports whether name is a registered public device
func (g *Gate) IsPublicDevice(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.publicDevices[name]
	return ok
}

// SetAdmin adds or removes name from the admin list. It reports whether the
// list changed.
func (g *Gate) SetAdmin(name string, admin bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return setMember(g.admins, name, admin)
}

// SetPublicDevice adds or removes name from the public device list
func (g *Gate) SetPublicDevice(name string, public bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return setMember(g.publicDevices, name, public)
}

// Admins returns the sorted admin list
func (g *Gate) Admins() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.admins)
}

// PublicDevices returns the sorted public device list
func (g *Gate) PublicDevices() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.publicDevices)
}

// Replace swaps both role lists, used when restoring a snapshot
func (g *Gate) Replace(admins, publicDevices []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.admins = toSet(admins)
	g.publicDevices = toSet(publicDevices)
}

func setMember(set map[string]struct{}, name string, present bool) bool {
	_, ok := set[name]
	if ok == present {
		return false
	}
	if present {
		set[name] = struct{}{}
	} else {
		delete(set, name)
	}
	return true
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Package presence tracks which users currently hold at least one live
// channel. The registry is correct per-process only; scaling out would
// require backing it with a shared store, which is out of scope here.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type channelSet map[string]struct{}

// RosterFunc is invoked with the full online roster every time the set of
// distinct online users changes. It must not call back into the registry.
type RosterFunc func(onlineUserIDs []string)

// Registry maps user ids to their live channel ids. A user is online iff
// they own at least one channel. Deregistration is debounced by a grace
// delay so a quick reconnect does not flap the roster.
//
// All mutations are atomic under one mutex; timers fire on their own
// goroutines and re-enter through the same lock.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]channelSet  // user id -> channel ids
	owners   map[string]string      // channel id -> user id
	pending  map[string]*time.Timer // channel id -> grace timer

	grace  time.Duration
	roster RosterFunc
	log    *slog.Logger
}

func NewRegistry(log *slog.Logger, grace time.Duration, roster RosterFunc) *Registry {
	return &Registry{
		channels: make(map[string]channelSet),
		owners:   make(map[string]string),
		pending:  make(map[string]*time.Timer),
		grace:    grace,
		roster:   roster,
		log:      log,
	}
}

// Register binds a channel to a user. The roster callback fires only when
// this is the user's first channel (offline -> online transition).
func (r *Registry) Register(userID, channelID string) {
	var roster []string
	changed := false

	r.mu.Lock()
	if timer, ok := r.pending[channelID]; ok {
		// Reconnect within the grace window: cancel the scheduled removal.
		timer.Stop()
		delete(r.pending, channelID)
	}
	set, online := r.channels[userID]
	if !online {
		set = make(channelSet)
		r.channels[userID] = set
		changed = true
	}
	set[channelID] = struct{}{}
	r.owners[channelID] = userID
	if changed {
		roster = r.onlineLocked()
	}
	r.mu.Unlock()

	if changed {
		r.log.Debug("User online", "user", userID, "channel", channelID)
		r.notify(roster)
	}
}

// Deregister schedules the removal of a channel after the grace delay.
// The lookup is by channel id since disconnect events carry no user id.
func (r *Registry) Deregister(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, owned := r.owners[channelID]; !owned {
		return
	}
	if timer, ok := r.pending[channelID]; ok {
		timer.Stop()
	}
	r.pending[channelID] = time.AfterFunc(r.grace, func() {
		r.remove(channelID)
	})
}

// remove drops the channel immediately. If the owner's set becomes empty,
// the user transitions online -> offline and the roster is broadcast.
func (r *Registry) remove(channelID string) {
	var roster []string
	changed := false

	r.mu.Lock()
	delete(r.pending, channelID)
	userID, owned := r.owners[channelID]
	if owned {
		delete(r.owners, channelID)
		if set, ok := r.channels[userID]; ok {
			delete(set, channelID)
			if len(set) == 0 {
				delete(r.channels, userID)
				changed = true
				roster = r.onlineLocked()
			}
		}
	}
	r.mu.Unlock()

	if changed {
		r.log.Debug("User offline", "user", userID, "channel", channelID)
		r.notify(roster)
	}
}

// OnlineUserIDs returns the sorted ids of users owning at least one channel.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineLocked()
}

// ChannelsFor returns the live channel ids of a user, possibly empty.
func (r *Registry) ChannelsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.channels[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) onlineLocked() []string {
	ids := make([]string, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) notify(roster []string) {
	if r.roster != nil {
		r.roster(roster)
	}
}

package view

import (
	"sync"
	"time"
)

const DefaultFlashTTL = 3 * time.Second

type Flash struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Flashes is the notification collaborator for one session. Messages stay
// visible until their TTL passes and are then dropped.
type Flashes struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Flash
}

func NewFlashes(ttl time.Duration) *Flashes {
	if ttl <= 0 {
		ttl = DefaultFlashTTL
	}
	return &Flashes{ttl: ttl, now: time.Now}
}

func (f *Flashes) Notify(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Flash{Message: message, ExpiresAt: f.now().Add(f.ttl)})
}

// Active returns the messages that have not expired yet, oldest first.
func (f *Flashes) Active() []Flash {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	kept := f.items[:0]
	for _, it := range f.items {
		if now.Before(it.ExpiresAt) {
			kept = append(kept, it)
		}
	}
	f.items = kept

	out := make([]Flash, len(kept))
	copy(out, kept)
	return out
}

package workflow

import (
	"sync"
	"time"

	"aurix/internal/models"
)

// Notifications is the popup panel state, kept apart from the rendering
// layer so open/unread bookkeeping is testable on its own.
type Notifications struct {
	mu     sync.Mutex
	open   bool
	nextID int64
	items  []*models.Notice
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

type NotificationsSnapshot struct {
	Open   bool             `json:"open"`
	Unread int              `json:"unread"`
	Items  []*models.Notice `json:"items"`
}

// Push appends a notice and returns it.
func (n *Notifications) Push(title, body string) *models.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	notice := &models.Notice{
		ID:        n.nextID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	n.items = append(n.items, notice)
	return notice
}

// SetOpen shows or hides the panel; opening marks nothing read.
func (n *Notifications) SetOpen(open bool) {
	n.mu.Lock()
	n.open = open
	n.mu.Unlock()
}

// Dismiss removes the notice with the given id and reports whether it
// existed.
func (n *Notifications) Dismiss(id int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, notice := range n.items {
		if notice.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// MarkAllRead flags every notice as read.
func (n *Notifications) MarkAllRead() {
	n.mu.Lock()
	for _, notice := range n.items {
		notice.Read = true
	}
	n.mu.Unlock()
}

func (n *Notifications) Snapshot() NotificationsSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	items := make([]*models.Notice, len(n.items))
	copy(items, n.items)
	unread := 0
	for _, notice := range n.items {
		if !notice.Read {
			unread++
		}
	}
	return NotificationsSnapshot{Open: n.open, Unread: unread, Items: items}
}

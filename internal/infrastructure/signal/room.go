package signal

import (
	"sync"

	"telecare/internal/core/domain"
	"telecare/internal/infrastructure/monitoring"

	"go.uber.org/zap"
)

const roomCapacity = 2

type member struct {
	userID domain.UserID
	client *Client
}

// Room holds up to two members of a call, in join order. All membership
// mutations and forwards are linearized by the room mutex; outbound sends are
// non-blocking enqueues, so holding the mutex across notification fan-out is
// safe. A closed room never accepts members again; callers that hit one must
// fetch a fresh room from the registry.
type Room struct {
	ID domain.RoomID

	mu      sync.Mutex
	members []member
	closed  bool

	logger  *zap.SugaredLogger
	metrics *monitoring.PrometheusCollector
}

func newRoom(id domain.RoomID, logger *zap.SugaredLogger, metrics *monitoring.PrometheusCollector) *Room {
	return &Room{
		ID:      id,
		logger:  logger,
		metrics: metrics,
	}
}

// Add admits a client under the given userId. A duplicate userId is treated
// as a reconnect: the new handle replaces the old one, and the superseded
// connection is closed. Returns domain.ErrRoomFull when both seats are taken
// by other users, and domain.ErrRoomClosed when the room has been deleted
// out from under the caller.
func (r *Room) Add(c *Client, userID domain.UserID) error {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return domain.ErrRoomClosed
	}

	var superseded *Client
	for i := range r.members {
		if r.members[i].userID == userID {
			superseded = r.members[i].client
			r.members[i].client = c
			break
		}
	}

	if superseded == nil {
		if len(r.members) >= roomCapacity {
			r.mu.Unlock()
			return domain.ErrRoomFull
		}

		for _, m := range r.members {
			r.deliver(m, userJoinedMessage(string(userID)))
		}
		r.members = append(r.members, member{userID: userID, client: c})
	}

	users := r.usersLocked()
	status := roomStatusMessage(users)
	for _, m := range r.members {
		r.deliver(m, status)
	}

	if superseded == nil && len(r.members) == roomCapacity {
		ready := roomReadyMessage(users)
		for _, m := range r.members {
			r.deliver(m, ready)
		}
	}

	r.mu.Unlock()

	if superseded != nil {
		r.logger.Infow("user reconnected, superseding previous connection",
			"room_id", r.ID, "user_id", userID)
		superseded.Close()
	}
	return nil
}

// Forward relays an envelope from the given sender. With a targetUserId it is
// delivered to that member only; without one it is broadcast to every other
// member. Unknown targets are dropped without telling the sender, matching
// the disconnect race policy: the sender learns about the departure from its
// own user-disconnected notice.
func (r *Room) Forward(senderID domain.UserID, env *Envelope) {
	data := env.EncodeAsSender(string(senderID))

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.metrics.RecordMessageDropped("room_closed")
		return
	}

	if env.TargetUserID != "" {
		for _, m := range r.members {
			if m.userID == domain.UserID(env.TargetUserID) {
				r.deliver(m, data)
				r.metrics.RecordMessageForwarded(env.Type)
				return
			}
		}
		r.metrics.RecordMessageDropped("unknown_target")
		return
	}

	delivered := false
	for _, m := range r.members {
		if m.userID == senderID {
			continue
		}
		r.deliver(m, data)
		delivered = true
	}
	if delivered {
		r.metrics.RecordMessageForwarded(env.Type)
	} else {
		r.metrics.RecordMessageDropped("no_peer")
	}
}

// Remove takes a member out of the room and notifies the remainder. Removing
// an unknown userId is a no-op, which makes disconnect handling idempotent.
// A non-nil holder restricts the removal to the connection that still owns
// the seat, so a dying handle that was superseded by a reconnect does not
// evict its replacement. Returns true when the room is empty afterwards; the
// caller is expected to ask the registry to delete it.
func (r *Room) Remove(userID domain.UserID, holder *Client) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.members {
		if r.members[i].userID == userID {
			if holder != nil && r.members[i].client != holder {
				return false, false
			}
			r.members = append(r.members[:i], r.members[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return false, len(r.members) == 0
	}

	notice := userDisconnectedMessage(string(userID))
	for _, m := range r.members {
		r.deliver(m, notice)
	}
	return true, len(r.members) == 0
}

// Users returns the member userIds in join order.
func (r *Room) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersLocked()
}

// Len returns the current member count.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// memberHandle returns the connection handle bound to userId, if present.
func (r *Room) memberHandle(userID domain.UserID) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.userID == userID {
			return m.client, true
		}
	}
	return nil, false
}

func (r *Room) usersLocked() []string {
	users := make([]string, len(r.members))
	for i, m := range r.members {
		users[i] = string(m.userID)
	}
	return users
}

func (r *Room) deliver(m member, data []byte) {
	if !m.client.Send(data) {
		r.metrics.RecordMessageDropped("send_queue_full")
		r.logger.Warnw("send queue full, dropping frame",
			"room_id", r.ID, "user_id", m.userID)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"deadgrid/server/game"
	"deadgrid/server/models"
)

var (
	// ErrSessionNotFound is returned for an unknown or ended session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the live session cap is reached.
	ErrTooManySessions = errors.New("too many live sessions")
)

const maxPlayerNameLen = 32

// Session is one live game. Its state is only touched under mu.
type Session struct {
	ID         string
	PlayerName string
	Seed       int64
	CreatedAt  time.Time

	mu         sync.Mutex
	state      *game.State
	recorded   bool
	lastActive time.Time
}

// ActionResult is what one applied action produced.
type ActionResult struct {
	Outcome  game.Outcome
	Snapshot game.Snapshot
	Over     bool
	Stats    game.FinalStats
	// Run is set on the request that recorded the finished run.
	Run *models.RunRecord
}

// StartOptions configures a new session.
type StartOptions struct {
	PlayerName string
	// Seed replays a known game when set.
	Seed *int64
}

// SessionService owns the live game sessions
type SessionService struct {
	rules       game.Rules
	runs        *RunService
	log         *logrus.Entry
	maxSessions int
	now         func() time.Time

	sessions     map[string]*Session
	sessionMutex sync.RWMutex
}

// NewSessionService creates a session service
func NewSessionService(rules game.Rules, runs *RunService, maxSessions int, log *logrus.Entry) *SessionService {
	return &SessionService{
		rules:       rules,
		runs:        runs,
		log:         log,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Start creates a session with a fresh world
func (ss *SessionService) Start(opts StartOptions) (*Session, game.Snapshot, error) {
	name := playerName(opts.PlayerName)

	var seed int64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		var err error
		if seed, err = game.NewSeed(); err != nil {
			return nil, game.Snapshot{}, fmt.Errorf("start session: %w", err)
		}
	}

	now := ss.now()
	sess := &Session{
		ID:         uuid.NewString(),
		PlayerName: name,
		Seed:       seed,
		CreatedAt:  now,
		lastActive: now,
	}
	entry := ss.log.WithField("session_id", sess.ID)
	sess.state = game.New(ss.rules,
		game.WithSource(game.NewSource(seed)),
		game.WithListener(eventLogger(entry)),
	)

	ss.sessionMutex.Lock()
	if len(ss.sessions) >= ss.maxSessions {
		ss.sessionMutex.Unlock()
		return nil, game.Snapshot{}, ErrTooManySessions
	}
	ss.sessions[sess.ID] = sess
	ss.sessionMutex.Unlock()

	entry.WithFields(logrus.Fields{"player": name, "seed": seed}).Info("session started")
	return sess, sess.state.Snapshot(), nil
}

// playerName trims raw and caps it at maxPlayerNameLen characters. Invalid
// UTF-8 is dropped so the name is safe for every store.
func playerName(raw string) string {
	name := strings.TrimSpace(strings.ToValidUTF8(raw, ""))
	if utf8.RuneCountInString(name) > maxPlayerNameLen {
		name = strings.TrimSpace(string([]rune(name)[:maxPlayerNameLen]))
	}
	if name == "" {
		return "survivor"
	}
	return name
}

// eventLogger traces every simulation event at debug level.
func eventLogger(entry *logrus.Entry) game.Listener {
	return game.ListenerFunc(func(e game.Event) {
		if !entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
			return
		}
		entry.WithFields(logrus.Fields{
			"event":  e.Type,
			"entity": e.EntityID,
			"amount": e.Amount,
		}).Debug(e.Message)
	})
}

// Get returns a live session
func (ss *SessionService) Get(id string) (*Session, error) {
	ss.sessionMutex.RLock()
	defer ss.sessionMutex.RUnlock()

	sess, exists := ss.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// Snapshot returns the current state of a session
func (ss *SessionService) Snapshot(id string) (game.Snapshot, error) {
	sess, err := ss.Get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Snapshot(), nil
}

// Apply runs one action against a session. A rejection comes back as the
// game's typed error next to the unchanged snapshot. The first request to
// observe the game ending records the run.
func (ss *SessionService) Apply(ctx context.Context, id string, action game.Action) (ActionResult, error) {
	sess, err := ss.Get(id)
	if err != nil {
		return ActionResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = ss.now()

	out, applyErr := sess.state.Apply(action)
	result := ActionResult{
		Outcome:  out,
		Snapshot: sess.state.Snapshot(),
		Over:     sess.state.Over(),
		Stats:    sess.state.FinalStats(),
	}

	if result.Over && !sess.recorded {
		run, err := ss.record(ctx, sess)
		if err != nil {
			// Left unrecorded; the next request on this session retries.
			ss.log.WithError(err).WithField("session_id", sess.ID).Error("failed to record run")
		} else {
			result.Run = &run
		}
	}

	return result, applyErr
}

// record stores the finished run. Callers hold sess.mu.
func (ss *SessionService) record(ctx context.Context, sess *Session) (models.RunRecord, error) {
	stats := sess.state.FinalStats()
	run := models.RunRecord{
		ID:           uuid.NewString(),
		SessionID:    sess.ID,
		PlayerName:   sess.PlayerName,
		Seed:         sess.Seed,
		DaysSurvived: stats.DaysSurvived,
		Kills:        stats.Kills,
		CampLevel:    stats.CampLevel,
		Inventory:    append([]string(nil), sess.state.Player.Inventory...),
		EndedAt:      ss.now().UTC(),
	}
	if err := ss.runs.Record(ctx, run); err != nil {
		return models.RunRecord{}, err
	}
	sess.recorded = true
	return run, nil
}

// End removes a session. Unfinished games are not recorded.
func (ss *SessionService) End(id string) {
	ss.sessionMutex.Lock()
	_, existed := ss.sessions[id]
	delete(ss.sessions, id)
	ss.sessionMutex.Unlock()

	if existed {
		ss.log.WithField("session_id", id).Info("session ended")
	}
}

// Count returns the number of live sessions
func (ss *SessionService) Count() int {
	ss.sessionMutex.RLock()
	defer ss.sessionMutex.RUnlock()
	return len(ss.sessions)
}

// PruneIdle ends sessions with no request for longer than idle and returns
// how many were removed.
func (ss *SessionService) PruneIdle(idle time.Duration) int {
	cutoff := ss.now().Add(-idle)

	ss.sessionMutex.RLock()
	var stale []string
	for id, sess := range ss.sessions {
		sess.mu.Lock()
		if sess.lastActive.Before(cutoff) {
			stale = append(stale, id)
		}
		sess.mu.Unlock()
	}
	ss.sessionMutex.RUnlock()

	for _, id := range stale {
		ss.End(id)
	}
	return len(stale)
}

// RunPruner calls PruneIdle every interval until ctx is done.
func (ss *SessionService) RunPruner(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ss.PruneIdle(idle); n > 0 {
				ss.log.WithField("pruned", n).Info("pruned idle sessions")
			}
		}
	}
}

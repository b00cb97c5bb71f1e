package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"prediction-form/internal/form"
)

const sessionCookie = "predict_session"

// session is one browser's form: its state container and live subscribers.
type session struct {
	id          string
	controller  *form.Controller
	notifier    *StateNotifier
	unsubscribe func()
}

func (s *session) close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.notifier.Close()
}

// sessionStore holds sessions in memory, bounded by count and idle time.
type sessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *session]
	build func(id string) (*session, error)
}

func newSessionStore(size int, ttl time.Duration, build func(id string) (*session, error)) *sessionStore {
	onEvict := func(id string, sess *session) {
		sess.close()
		logrus.WithField("session", id).Debug("form session evicted")
	}
	return &sessionStore{
		cache: expirable.NewLRU[string, *session](size, onEvict, ttl),
		build: build,
	}
}

// get returns the session for id, creating one under a fresh id when id is
// empty or unknown. Every access restarts the idle timer.
func (st *sessionStore) get(id string) (*session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id != "" {
		if sess, ok := st.cache.Get(id); ok {
			st.cache.Add(id, sess)
			return sess, false, nil
		}
	}

	sess, err := st.build(uuid.NewString())
	if err != nil {
		return nil, false, err
	}
	st.cache.Add(sess.id, sess)
	logrus.WithField("session", sess.id).Debug("form session created")
	return sess, true, nil
}

// lookup returns an existing session without creating one.
func (st *sessionStore) lookup(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Get(id)
}

func (st *sessionStore) len() int {
	return st.cache.Len()
}

func (st *sessionStore) purge() {
	st.cache.Purge()
}

package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/data/repos"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/modules/analysis"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
	"github.com/yungbote/supplesafe-backend/internal/realtime/bus"
)

// Workspace is the server-side state of one client: its session, medication list,
// history view and analysis controller.
type Workspace struct {
	Key        string
	Registry   *MedicationRegistry
	History    *HistoryLedger
	Controller *analysis.Controller

	log      *logger.Logger
	mu       sync.RWMutex
	session  *domain.Session
	sub      *bus.Subscription
	lastUsed atomic.Int64
}

func (w *Workspace) Session() *domain.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.session
}

// Medications returns the local list, loading it on first use.
func (w *Workspace) Medications(ctx context.Context) []domain.Medication {
	if !w.Registry.Loaded() {
		return w.Registry.Load(ctx, w.Session())
	}
	return w.Registry.List()
}

// Analyze runs the controller against the workspace's session and medication list.
func (w *Workspace) Analyze(ctx context.Context) (analysis.Snapshot, bool, error) {
	return w.Controller.Analyze(ctx, w.Session(), w.Medications(ctx))
}

func (w *Workspace) setSession(sess *domain.Session) {
	w.mu.Lock()
	w.session = sess
	w.mu.Unlock()
}

// signOut drops the workspace to anonymous state.
func (w *Workspace) signOut(ctx context.Context) {
	w.setSession(nil)
	w.Controller.Reset()
	w.History.Clear()
	w.Registry.Load(ctx, nil)
}

type WorkspaceDeps struct {
	Log         *logger.Logger
	Medications repos.MedicationRepo
	History     repos.HistoryRepo
	Sessions    bus.Bus
	// Optional; archived label photos are deleted with their history records.
	Archive     LabelRemover
	NewAnalysis func(history analysis.HistoryRecorder) *analysis.Controller
}

// WorkspaceStore hands out one workspace per client key.
type WorkspaceStore struct {
	log  *logger.Logger
	deps WorkspaceDeps

	mu         sync.Mutex
	workspaces map[string]*Workspace
	now        func() time.Time
}

func NewWorkspaceStore(deps WorkspaceDeps) *WorkspaceStore {
	return &WorkspaceStore{
		log:        deps.Log.With("service", "WorkspaceStore"),
		deps:       deps,
		workspaces: map[string]*Workspace{},
		now:        time.Now,
	}
}

// WorkspaceKey is the login (token id) for a signed-in client, otherwise the client id.
// Two logins of one user never share a workspace.
func WorkspaceKey(sess *domain.Session, clientID string) string {
	if sess.Authenticated() {
		if sess.TokenID != uuid.Nil {
			return "session:" + sess.TokenID.String()
		}
		return "user:" + sess.UserID.String()
	}
	return "client:" + clientID
}

// Acquire returns the workspace for the client, creating and subscribing it on first use.
func (s *WorkspaceStore) Acquire(ctx context.Context, sess *domain.Session, clientID string) *Workspace {
	key := WorkspaceKey(sess, clientID)

	s.mu.Lock()
	ws, ok := s.workspaces[key]
	if !ok {
		ws = s.newWorkspace(key, sess)
		s.workspaces[key] = ws
	}
	ws.lastUsed.Store(s.now().UnixNano())
	s.mu.Unlock()

	if ok && sess.Authenticated() {
		ws.setSession(sess)
	}
	if !ws.Registry.Loaded() {
		ws.Registry.Load(ctx, ws.Session())
	}
	return ws
}

func (s *WorkspaceStore) newWorkspace(key string, sess *domain.Session) *Workspace {
	history := NewHistoryLedger(s.deps.Log, s.deps.History)
	history.archive = s.deps.Archive
	ws := &Workspace{
		Key:        key,
		Registry:   NewMedicationRegistry(s.deps.Log, s.deps.Medications),
		History:    history,
		Controller: s.deps.NewAnalysis(history),
		log:        s.log.With("workspace", key),
		session:    sess,
	}
	if s.deps.Sessions != nil && sess.Authenticated() {
		owner := *sess
		ws.sub = s.deps.Sessions.Subscribe(func(evt domain.SessionEvent) {
			if evt.Ends(&owner) {
				s.release(key, true)
			}
		})
	}
	s.log.Debug("workspace created", "workspace", key)
	return ws
}

func (s *WorkspaceStore) release(key string, signedOut bool) {
	s.mu.Lock()
	ws, ok := s.workspaces[key]
	if ok {
		delete(s.workspaces, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	ws.sub.Unsubscribe()
	if signedOut {
		ws.signOut(context.Background())
		ws.log.Info("workspace signed out")
	}
}

// Sweep releases workspaces idle for longer than maxIdle. Workspaces with an analysis
// in flight are kept.
func (s *WorkspaceStore) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()
	s.mu.Lock()
	var idle []string
	for k, ws := range s.workspaces {
		if ws.lastUsed.Load() < cutoff && ws.Controller.Snapshot().State != analysis.StateAnalyzing {
			idle = append(idle, k)
		}
	}
	s.mu.Unlock()
	for _, k := range idle {
		s.release(k, false)
	}
	return len(idle)
}

func (s *WorkspaceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Shutdown releases every workspace and its session subscription.
func (s *WorkspaceStore) Shutdown() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.workspaces))
	for k := range s.workspaces {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	for _, k := range keys {
		s.release(k, false)
	}
}

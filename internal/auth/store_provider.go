package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/shared/apperr"
)

const (
	usersCollection    = "users"
	profilesCollection = "profiles"
)

type userRecord struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash []byte `json:"password_hash"`
}

type profileRecord struct {
	IsAdmin bool `json:"is_admin"`
}

// StoreProvider implements Provider on top of the document store:
// credentials in the users collection, the privilege flag in profiles,
// and live session tokens in memory. Session identity is ephemeral by
// design; a restart signs everyone out.
type StoreProvider struct {
	store  backend.Store
	logger *slog.Logger

	mu        sync.Mutex
	sessions  map[string]Identity // token -> identity
	nextSub   int
	listeners map[int]func(Event)
}

func NewStoreProvider(store backend.Store, logger *slog.Logger) *StoreProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreProvider{
		store:     store,
		logger:    logger,
		sessions:  make(map[string]Identity),
		listeners: make(map[int]func(Event)),
	}
}

func (p *StoreProvider) Register(ctx context.Context, email, password, name string) (string, Identity, error) {
	email = normalizeEmail(email)
	if _, _, err := p.findUser(ctx, email); err == nil {
		return "", Identity{}, apperr.AuthFailedErr("Email already in use.", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", Identity{}, apperr.Wrap(err)
	}

	data, err := json.Marshal(userRecord{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		return "", Identity{}, apperr.Wrap(err)
	}
	userID, err := p.store.Create(ctx, usersCollection, data)
	if err != nil {
		return "", Identity{}, apperr.AuthFailedErr("Registration failed.", err)
	}

	// New accounts start without privilege; granting admin is a
	// separate backend-side operation.
	profile, _ := json.Marshal(profileRecord{IsAdmin: false})
	if err := p.store.Upsert(ctx, profilesCollection, userID, profile); err != nil {
		p.logger.Warn("profile_create_failed",
			slog.String("user_id", userID),
			slog.Any("err", err),
		)
	}

	// Registration signs the user in, matching the hosted provider.
	ident := Identity{ID: userID, Email: email, Name: displayName(name, email)}
	return p.openSession(ident), ident, nil
}

func (p *StoreProvider) Login(ctx context.Context, email, password string) (string, Identity, error) {
	email = normalizeEmail(email)
	userID, rec, err := p.findUser(ctx, email)
	if err != nil {
		return "", Identity{}, apperr.AuthFailedErr("Invalid email or password.", err)
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return "", Identity{}, apperr.AuthFailedErr("Invalid email or password.", nil)
	}

	ident := Identity{ID: userID, Email: email, Name: displayName(rec.Name, email)}
	return p.openSession(ident), ident, nil
}

func (p *StoreProvider) Logout(_ context.Context, token string) error {
	p.mu.Lock()
	ident, live := p.sessions[token]
	delete(p.sessions, token)
	p.mu.Unlock()

	if live {
		p.emit(Event{Type: SignedOut, Token: token, Identity: ident})
	}
	return nil
}

func (p *StoreProvider) Resolve(token string) (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ident, ok := p.sessions[token]
	return ident, ok
}

func (p *StoreProvider) OnSessionChange(fn func(Event)) backend.CancelFunc {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Privilege looks up the is_admin flag for a user. Absent profile or
// read failure both resolve to false; the caller decides whether the
// error is worth logging.
func (p *StoreProvider) Privilege(ctx context.Context, userID string) (bool, error) {
	doc, err := p.store.Get(ctx, profilesCollection, userID)
	if err != nil {
		return false, err
	}
	var rec profileRecord
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		return false, err
	}
	return rec.IsAdmin, nil
}

func (p *StoreProvider) openSession(ident Identity) string {
	token := uuid.NewString()
	p.mu.Lock()
	p.sessions[token] = ident
	p.mu.Unlock()

	p.emit(Event{Type: SignedIn, Token: token, Identity: ident})
	return token
}

func (p *StoreProvider) emit(ev Event) {
	p.mu.Lock()
	fns := make([]func(Event), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (p *StoreProvider) findUser(ctx context.Context, email string) (string, userRecord, error) {
	docs, err := p.store.FetchAll(ctx, usersCollection)
	if err != nil {
		return "", userRecord{}, err
	}
	for _, d := range docs {
		var rec userRecord
		if err := json.Unmarshal(d.Data, &rec); err != nil {
			continue
		}
		if rec.Email == email {
			return d.ID, rec, nil
		}
	}
	return "", userRecord{}, apperr.NotFoundErr("User not found.")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// displayName falls back to the email local part, the way the hosted
// provider surfaced names for accounts created without one.
func displayName(name, email string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return "User"
}

// Package testutil provides mock implementations for testing the auth application layer.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/domain/flow"
	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/logger"
)

// ErrDuplicateKey mimics the driver-level uniqueness violation the real
// repository surfaces, in a form shared/errors.IsDuplicateError recognizes.
var ErrDuplicateKey = errors.New("UNIQUE constraint failed: simulated")

func linkKey(provider, subjectID string) string {
	return provider + "|" + subjectID
}

// MockAccountRepository is an in-memory implementation of account.Repository
// that enforces the same uniqueness rules as the persistent one.
type MockAccountRepository struct {
	mu             sync.Mutex
	accounts       map[uint]*account.Account
	accountsBySID  map[string]*account.Account
	accountsByMail map[string]*account.Account
	links          map[string]*account.LinkedAccount
	linksByID      map[uint]*account.LinkedAccount
	nextID         uint
	nextLinkID     uint

	// Error injection for testing
	getError    error
	createError error
	updateError error
	unlinkError error
}

// NewMockAccountRepository creates a new mock account repository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts:       make(map[uint]*account.Account),
		accountsBySID:  make(map[string]*account.Account),
		accountsByMail: make(map[string]*account.Account),
		links:          make(map[string]*account.LinkedAccount),
		linksByID:      make(map[uint]*account.LinkedAccount),
	}
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uint) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	return m.accounts[id], nil
}

func (m *MockAccountRepository) GetBySID(ctx context.Context, sid string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	return m.accountsBySID[sid], nil
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	return m.accountsByMail[email], nil
}

func (m *MockAccountRepository) GetByExternalIdentity(ctx context.Context, provider, subjectID string) (*account.Account, *account.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, nil, m.getError
	}
	link := m.links[linkKey(provider, subjectID)]
	if link == nil {
		return nil, nil, nil
	}
	return m.accounts[link.AccountID], link, nil
}

func (m *MockAccountRepository) GetLink(ctx context.Context, provider, subjectID string) (*account.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	return m.links[linkKey(provider, subjectID)], nil
}

func (m *MockAccountRepository) GetLinkByAccount(ctx context.Context, accountID uint, provider string) (*account.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	for _, link := range m.links {
		if link.AccountID == accountID && link.Provider == provider {
			return link, nil
		}
	}
	return nil, nil
}

func (m *MockAccountRepository) CreateAccountWithLink(ctx context.Context, acct *account.Account, link *account.LinkedAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.accountsByMail[acct.Email()]; exists {
		return fmt.Errorf("insert account: %w", ErrDuplicateKey)
	}
	if _, exists := m.links[linkKey(link.Provider, link.SubjectID)]; exists {
		return fmt.Errorf("insert link: %w", ErrDuplicateKey)
	}

	m.nextID++
	if err := acct.SetID(m.nextID); err != nil {
		return err
	}
	m.accounts[acct.ID()] = acct
	m.accountsBySID[acct.SID()] = acct
	m.accountsByMail[acct.Email()] = acct

	link.AccountID = acct.ID()
	m.storeLink(link)
	return nil
}

func (m *MockAccountRepository) UpgradeToLinked(ctx context.Context, acct *account.Account, link *account.LinkedAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.links[linkKey(link.Provider, link.SubjectID)]; exists {
		return fmt.Errorf("insert link: %w", ErrDuplicateKey)
	}
	m.accounts[acct.ID()] = acct
	m.accountsBySID[acct.SID()] = acct
	m.accountsByMail[acct.Email()] = acct
	m.storeLink(link)
	return nil
}

func (m *MockAccountRepository) CreateLink(ctx context.Context, link *account.LinkedAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.links[linkKey(link.Provider, link.SubjectID)]; exists {
		return fmt.Errorf("insert link: %w", ErrDuplicateKey)
	}
	m.storeLink(link)
	return nil
}

func (m *MockAccountRepository) UpdateLink(ctx context.Context, link *account.LinkedAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	m.links[linkKey(link.Provider, link.SubjectID)] = link
	m.linksByID[link.ID] = link
	return nil
}

func (m *MockAccountRepository) UnlinkExternal(ctx context.Context, acct *account.Account, linkID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unlinkError != nil {
		return m.unlinkError
	}
	link, exists := m.linksByID[linkID]
	if !exists {
		return errors.New("link not found")
	}
	delete(m.links, linkKey(link.Provider, link.SubjectID))
	delete(m.linksByID, linkID)
	m.accounts[acct.ID()] = acct
	return nil
}

func (m *MockAccountRepository) Update(ctx context.Context, acct *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	m.accounts[acct.ID()] = acct
	m.accountsBySID[acct.SID()] = acct
	m.accountsByMail[acct.Email()] = acct
	return nil
}

func (m *MockAccountRepository) UpdateAuthMethod(ctx context.Context, acct *account.Account) error {
	return m.Update(ctx, acct)
}

// Seed inserts an account without uniqueness checks, assigning an ID when
// the account has none.
func (m *MockAccountRepository) Seed(acct *account.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acct.ID() == 0 {
		m.nextID++
		_ = acct.SetID(m.nextID)
	}
	m.accounts[acct.ID()] = acct
	m.accountsBySID[acct.SID()] = acct
	m.accountsByMail[acct.Email()] = acct
}

// SeedLink inserts a link without uniqueness checks.
func (m *MockAccountRepository) SeedLink(link *account.LinkedAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeLink(link)
}

func (m *MockAccountRepository) storeLink(link *account.LinkedAccount) {
	if link.ID == 0 {
		m.nextLinkID++
		link.ID = m.nextLinkID
	}
	m.links[linkKey(link.Provider, link.SubjectID)] = link
	m.linksByID[link.ID] = link
}

// LinkCount reports the number of stored links.
func (m *MockAccountRepository) LinkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

// AccountCount reports the number of stored accounts.
func (m *MockAccountRepository) AccountCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

// SetGetError injects an error for all read operations.
func (m *MockAccountRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

// SetCreateError injects an error for all create operations.
func (m *MockAccountRepository) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createError = err
}

// SetUpdateError injects an error for update operations.
func (m *MockAccountRepository) SetUpdateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateError = err
}

// SetUnlinkError injects an error for UnlinkExternal.
func (m *MockAccountRepository) SetUnlinkError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlinkError = err
}

// MockStateStore is an in-memory state store with the atomic consume
// contract of the real one.
type MockStateStore struct {
	mu      sync.Mutex
	records map[string]flow.StateRecord

	putError     error
	consumeError error
}

// NewMockStateStore creates a new mock state store.
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{records: make(map[string]flow.StateRecord)}
}

func (m *MockStateStore) Put(ctx context.Context, token string, record flow.StateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putError != nil {
		return m.putError
	}
	m.records[token] = record
	return nil
}

func (m *MockStateStore) Consume(ctx context.Context, token string) (*flow.StateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.consumeError != nil {
		return nil, m.consumeError
	}
	record, exists := m.records[token]
	if !exists {
		return nil, nil
	}
	delete(m.records, token)
	return &record, nil
}

func (m *MockStateStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, token)
	return nil
}

// Len reports the number of stored records.
func (m *MockStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// SetPutError injects an error for Put.
func (m *MockStateStore) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
}

// SetConsumeError injects an error for Consume.
func (m *MockStateStore) SetConsumeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumeError = err
}

// MockCallbackSessionStore is an in-memory callback session store.
type MockCallbackSessionStore struct {
	mu       sync.Mutex
	sessions map[string]flow.CallbackSession

	putError error
}

// NewMockCallbackSessionStore creates a new mock callback session store.
func NewMockCallbackSessionStore() *MockCallbackSessionStore {
	return &MockCallbackSessionStore{sessions: make(map[string]flow.CallbackSession)}
}

func (m *MockCallbackSessionStore) Put(ctx context.Context, token string, session flow.CallbackSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putError != nil {
		return m.putError
	}
	m.sessions[token] = session
	return nil
}

func (m *MockCallbackSessionStore) Consume(ctx context.Context, token string) (*flow.CallbackSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[token]
	if !exists {
		return nil, nil
	}
	delete(m.sessions, token)
	return &session, nil
}

// SetPutError injects an error for Put.
func (m *MockCallbackSessionStore) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
}

// MockIdentityProviderClient is a scriptable provider client.
type MockIdentityProviderClient struct {
	ProviderName  string
	IsConfigured  bool
	AuthURLBase   string
	AccessToken   string
	ExchangeErr   error
	Profile       *account.ExternalIdentity
	ProfileErr    error

	mu            sync.Mutex
	exchangeCalls int
}

// NewMockIdentityProviderClient creates a configured mock provider client.
func NewMockIdentityProviderClient() *MockIdentityProviderClient {
	return &MockIdentityProviderClient{
		ProviderName: "google",
		IsConfigured: true,
		AuthURLBase:  "https://accounts.example.com/authorize",
		AccessToken:  "provider-access-token",
	}
}

func (m *MockIdentityProviderClient) Provider() string { return m.ProviderName }

func (m *MockIdentityProviderClient) Configured() bool { return m.IsConfigured }

func (m *MockIdentityProviderClient) AuthCodeURL(state string) string {
	return m.AuthURLBase + "?state=" + state
}

func (m *MockIdentityProviderClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	m.exchangeCalls++
	m.mu.Unlock()
	if m.ExchangeErr != nil {
		return "", m.ExchangeErr
	}
	return m.AccessToken, nil
}

func (m *MockIdentityProviderClient) FetchProfile(ctx context.Context, accessToken string) (*account.ExternalIdentity, error) {
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.Profile == nil {
		return nil, errors.New("no profile scripted")
	}
	profile := *m.Profile
	return &profile, nil
}

// ExchangeCalls reports how many times ExchangeCode ran.
func (m *MockIdentityProviderClient) ExchangeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchangeCalls
}

// MockSessionIssuer mints deterministic tokens.
type MockSessionIssuer struct {
	mu       sync.Mutex
	counter  int
	IssueErr error

	// refresh token -> account SID, for VerifyRefresh
	refreshOwners map[string]string
	refreshRoles  map[string]authorization.Role
}

// NewMockSessionIssuer creates a new mock session issuer.
func NewMockSessionIssuer() *MockSessionIssuer {
	return &MockSessionIssuer{
		refreshOwners: make(map[string]string),
		refreshRoles:  make(map[string]authorization.Role),
	}
}

func (m *MockSessionIssuer) IssueTokens(accountSID string, role authorization.Role) (*usecases.TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IssueErr != nil {
		return nil, m.IssueErr
	}
	m.counter++
	refresh := fmt.Sprintf("refresh-%s-%d", accountSID, m.counter)
	m.refreshOwners[refresh] = accountSID
	m.refreshRoles[refresh] = role
	return &usecases.TokenPair{
		AccessToken:      fmt.Sprintf("access-%s-%d", accountSID, m.counter),
		RefreshToken:     refresh,
		ExpiresIn:        900,
		RefreshExpiresAt: time.Now().UTC().Add(30 * 24 * time.Hour),
	}, nil
}

func (m *MockSessionIssuer) VerifyRefresh(token string) (string, authorization.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, exists := m.refreshOwners[token]
	if !exists {
		return "", "", errors.New("unknown refresh token")
	}
	return sid, m.refreshRoles[token], nil
}

// MockRefreshTokenStore tracks active refresh tokens per account.
type MockRefreshTokenStore struct {
	mu     sync.Mutex
	active map[string]uint

	persistError error
	rotateError  error
}

// NewMockRefreshTokenStore creates a new mock refresh token store.
func NewMockRefreshTokenStore() *MockRefreshTokenStore {
	return &MockRefreshTokenStore{active: make(map[string]uint)}
}

func (m *MockRefreshTokenStore) Persist(ctx context.Context, accountID uint, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persistError != nil {
		return m.persistError
	}
	m.active[token] = accountID
	return nil
}

func (m *MockRefreshTokenStore) IsActive(ctx context.Context, accountID uint, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, exists := m.active[token]
	return exists && owner == accountID, nil
}

func (m *MockRefreshTokenStore) Rotate(ctx context.Context, accountID uint, oldToken, newToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rotateError != nil {
		return m.rotateError
	}
	delete(m.active, oldToken)
	m.active[newToken] = accountID
	return nil
}

// ActiveCount reports the number of active refresh tokens.
func (m *MockRefreshTokenStore) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// SetPersistError injects an error for Persist.
func (m *MockRefreshTokenStore) SetPersistError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistError = err
}

// SetRotateError injects an error for Rotate.
func (m *MockRefreshTokenStore) SetRotateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotateError = err
}

// MockAuditSink collects audit events in memory.
type MockAuditSink struct {
	mu     sync.Mutex
	events []audit.Event
}

// NewMockAuditSink creates a new mock audit sink.
func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

func (m *MockAuditSink) Record(ctx context.Context, event audit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of the collected events.
func (m *MockAuditSink) Events() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfType returns the collected events with the given type.
func (m *MockAuditSink) EventsOfType(eventType audit.EventType) []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Event
	for _, event := range m.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// MockNotifier counts notification sends.
type MockNotifier struct {
	mu            sync.Mutex
	WelcomeCount  int
	LinkedCount   int
	UnlinkedCount int
	SendErr       error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendWelcome(ctx context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.WelcomeCount++
	return nil
}

func (m *MockNotifier) SendIdentityLinked(ctx context.Context, email, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.LinkedCount++
	return nil
}

func (m *MockNotifier) SendIdentityUnlinked(ctx context.Context, email, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.UnlinkedCount++
	return nil
}

// MockPasswordHasher hashes with a visible prefix so tests can assert on it.
type MockPasswordHasher struct {
	HashErr error
}

// NewMockPasswordHasher creates a new mock password hasher.
func NewMockPasswordHasher() *MockPasswordHasher {
	return &MockPasswordHasher{}
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return errors.New("password mismatch")
}

// MockLogger records log calls for inspection.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry records a single log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []interface{}
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) log(level, msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, Message: msg, Fields: keysAndValues})
}

func (m *MockLogger) Debugw(msg string, keysAndValues ...interface{}) {
	m.log("DEBUG", msg, keysAndValues...)
}

func (m *MockLogger) Infow(msg string, keysAndValues ...interface{}) {
	m.log("INFO", msg, keysAndValues...)
}

func (m *MockLogger) Warnw(msg string, keysAndValues ...interface{}) {
	m.log("WARN", msg, keysAndValues...)
}

func (m *MockLogger) Errorw(msg string, keysAndValues ...interface{}) {
	m.log("ERROR", msg, keysAndValues...)
}

func (m *MockLogger) Fatalw(msg string, keysAndValues ...interface{}) {
	m.log("FATAL", msg, keysAndValues...)
}

func (m *MockLogger) With(args ...interface{}) logger.Interface { return m }

func (m *MockLogger) Named(name string) logger.Interface { return m }

// Entries returns a copy of the recorded log entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

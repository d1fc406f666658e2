// Package fixtures provides an in-memory unit of work for service and
// handler tests. Do serializes transactional scopes and restores a snapshot
// on error, mimicking commit/rollback; reads outside Do are plain.
package fixtures

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/repository"
)

// MemoryUoW is an in-memory repository.UnitOfWork.
type MemoryUoW struct {
	mu   sync.Mutex // guards state
	txMu sync.Mutex // serializes Do scopes

	accounts   map[int64]*domain.Account
	txns       []*domain.Transaction
	nextAcctID int64
	nextTxnID  int64

	// FailNext injects one transient error into the next mutating call.
	FailNext error

	// failReads fails every account load and ledger sum for these ids.
	failReads map[int64]error
}

// NewMemoryUoW creates an empty store.
func NewMemoryUoW() *MemoryUoW {
	return &MemoryUoW{accounts: make(map[int64]*domain.Account)}
}

// SeedAccount inserts an account with the given balance and returns it.
func (m *MemoryUoW) SeedAccount(name, email, balance string) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAcctID++
	a := &domain.Account{
		ID:        m.nextAcctID,
		Name:      name,
		Email:     email,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now(),
	}
	m.accounts[a.ID] = a
	return cloneAccount(a)
}

// SeedTransaction appends a ledger entry directly, bypassing the engine.
func (m *MemoryUoW) SeedTransaction(senderID, receiverID int64, amount, fee string) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTxnID++
	t := &domain.Transaction{
		ID:            m.nextTxnID,
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Amount:        decimal.RequireFromString(amount),
		CommissionFee: decimal.RequireFromString(fee),
		CreatedAt:     time.Now(),
	}
	m.txns = append(m.txns, t)
	return t
}

// Account returns the current stored state of an account.
func (m *MemoryUoW) Account(id int64) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAccount(m.accounts[id])
}

// TransactionCount reports the ledger depth.
func (m *MemoryUoW) TransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txns)
}

func (m *MemoryUoW) Accounts() repository.AccountRepository         { return &memAccounts{m} }
func (m *MemoryUoW) Transactions() repository.TransactionRepository { return &memTxns{m} }

// Do serializes callers the way row locks serialize database transactions:
// a second scope touching the store waits for the first to finish and then
// observes its committed writes. On error all writes are rolled back.
func (m *MemoryUoW) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapAccounts := make(map[int64]*domain.Account, len(m.accounts))
	for id, a := range m.accounts {
		snapAccounts[id] = cloneAccount(a)
	}
	snapTxns := append([]*domain.Transaction(nil), m.txns...)
	snapAcctID, snapTxnID := m.nextAcctID, m.nextTxnID
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.accounts = snapAccounts
		m.txns = snapTxns
		m.nextAcctID, m.nextTxnID = snapAcctID, snapTxnID
		m.mu.Unlock()
		return err
	}
	return nil
}

// FailReadsFor makes account loads and ledger sums for the given id return
// err until cleared with a nil err.
func (m *MemoryUoW) FailReadsFor(id int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads == nil {
		m.failReads = make(map[int64]error)
	}
	if err == nil {
		delete(m.failReads, id)
		return
	}
	m.failReads[id] = err
}

func (m *MemoryUoW) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.FlaggedAt != nil {
		t := *a.FlaggedAt
		c.FlaggedAt = &t
	}
	return &c
}

type memAccounts struct{ m *MemoryUoW }

func (r *memAccounts) Get(_ context.Context, id int64) (*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failReads[id]; err != nil {
		return nil, err
	}
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccounts) Create(_ context.Context, a *domain.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextAcctID++
	a.ID = r.m.nextAcctID
	a.CreatedAt = time.Now()
	r.m.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *memAccounts) GetPairForUpdate(ctx context.Context, senderID, receiverID int64) (*domain.Account, *domain.Account, error) {
	if err := r.m.takeFailure(); err != nil {
		return nil, nil, err
	}
	sender, err := r.Get(ctx, senderID)
	if err != nil {
		return nil, nil, err
	}
	receiver, err := r.Get(ctx, receiverID)
	if err != nil {
		return nil, nil, err
	}
	return sender, receiver, nil
}

func (r *memAccounts) UpdateBalances(_ context.Context, accounts ...*domain.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range accounts {
		stored, ok := r.m.accounts[a.ID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		stored.Balance = a.Balance
	}
	return nil
}

func (r *memAccounts) SetFlag(_ context.Context, id int64, at time.Time, reason string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.FlaggedAt = &at
	a.FlaggedReason = reason
	return nil
}

func (r *memAccounts) ClearFlag(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.FlaggedAt = nil
	a.FlaggedReason = ""
	return nil
}

func (r *memAccounts) ListActiveIDs(_ context.Context) ([]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ids := make([]int64, 0, len(r.m.accounts))
	for id := int64(1); id <= r.m.nextAcctID; id++ {
		if _, ok := r.m.accounts[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memAccounts) ListFlagged(_ context.Context) ([]*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var flagged []*domain.Account
	for id := int64(1); id <= r.m.nextAcctID; id++ {
		if a, ok := r.m.accounts[id]; ok && a.FlaggedAt != nil {
			flagged = append(flagged, cloneAccount(a))
		}
	}
	// flagged_at descending
	for i := 0; i < len(flagged); i++ {
		for j := i + 1; j < len(flagged); j++ {
			if flagged[j].FlaggedAt.After(*flagged[i].FlaggedAt) {
				flagged[i], flagged[j] = flagged[j], flagged[i]
			}
		}
	}
	return flagged, nil
}

type memTxns struct{ m *MemoryUoW }

func (r *memTxns) Create(_ context.Context, t *domain.Transaction) error {
	if err := r.m.takeFailure(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextTxnID++
	t.ID = r.m.nextTxnID
	c := *t
	r.m.txns = append(r.m.txns, &c)
	return nil
}

func (r *memTxns) ListForAccount(_ context.Context, accountID int64, page int) ([]*domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var involved []*domain.Transaction
	for i := len(r.m.txns) - 1; i >= 0; i-- { // newest first
		t := r.m.txns[i]
		if t.SenderID == accountID || t.ReceiverID == accountID {
			c := *t
			c.Sender = cloneAccount(r.m.accounts[t.SenderID])
			c.Receiver = cloneAccount(r.m.accounts[t.ReceiverID])
			involved = append(involved, &c)
		}
	}
	start := (page - 1) * repository.PageSize
	if start >= len(involved) {
		return nil, nil
	}
	end := start + repository.PageSize
	if end > len(involved) {
		end = len(involved)
	}
	return involved[start:end], nil
}

func (r *memTxns) IncomingTotal(_ context.Context, accountID int64) (decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failReads[accountID]; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range r.m.txns {
		if t.ReceiverID == accountID {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (r *memTxns) OutgoingTotal(_ context.Context, accountID int64) (decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failReads[accountID]; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range r.m.txns {
		if t.SenderID == accountID {
			total = total.Add(t.Amount).Add(t.CommissionFee)
		}
	}
	return total, nil
}

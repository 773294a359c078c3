package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
	"expense-ledger/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	randRead = rand.Read
	jsonMarshal = json.Marshal
	jsonUnmarshal = json.Unmarshal
	timeNow = time.Now
	parseWithClaims = jwt.ParseWithClaims
	getUserByEmail = store.GetUserByEmail

	insertUser = store.CreateUser
	updateUserRow = store.UpdateUser
	deleteUserRow = store.DeleteUser
	getUserForUpdate = store.GetUserForUpdate
	countAdminsForUpdate = store.CountAdminsForUpdate
	updateUserGoogleIdentity = store.UpdateUserGoogleIdentity

	getExpense = store.GetExpense
	getExpenseForUpdate = store.GetExpenseForUpdate
	createExpense = store.CreateExpense
	updateExpense = store.UpdateExpense
	updateExpenseDocument = store.UpdateExpenseDocument
	deleteExpense = store.DeleteExpense
	listDetailsForUpdate = store.ListDetailsForUpdate
	getDetailForUpdate = store.GetDetailForUpdate
	countDetailsForUpdate = store.CountDetailsForUpdate
	insertDetail = store.InsertDetail
	updateDetail = store.UpdateDetail
	deleteDetail = store.DeleteDetail

	getExpenseDiscount = store.GetExpenseDiscount
	insertExpenseDiscount = store.InsertExpenseDiscount
	updateExpenseDiscount = store.UpdateExpenseDiscount
	deleteExpenseDiscount = store.DeleteExpenseDiscount

	expenseDateBounds = store.ExpenseDateBounds
	listExpensesBetween = store.ListExpensesBetween
}

// txDB hands out a fresh FakeTx per Begin and remembers them.
func txDB() (*database.FakeDB, *[]*database.FakeTx) {
	var txs []*database.FakeTx
	db := &database.FakeDB{BeginFn: func(context.Context) (pgx.Tx, error) {
		tx := &database.FakeTx{}
		txs = append(txs, tx)
		return tx, nil
	}}
	return db, &txs
}

// memExpenses is an in-memory stand-in for the expense tables. Writes made
// inside a rolled back transaction are not undone; tests assert on the tx.
type memExpenses struct {
	expenses  map[int]*model.Expense
	details   map[int]*model.ExpenseDetail
	discounts map[int]*model.ExpenseDiscount
	nextID    int
}

func newMemExpenses() *memExpenses {
	return &memExpenses{
		expenses:  map[int]*model.Expense{},
		details:   map[int]*model.ExpenseDetail{},
		discounts: map[int]*model.ExpenseDiscount{},
		nextID:    100,
	}
}

func (m *memExpenses) id() int { m.nextID++; return m.nextID }

func (m *memExpenses) seed(e model.Expense, details ...model.ExpenseDetail) {
	cp := e
	cp.Details, cp.Discounts = nil, nil
	m.expenses[e.ID] = &cp
	for _, d := range details {
		d := d
		d.ExpenseID = e.ID
		m.details[d.ID] = &d
	}
}

func (m *memExpenses) detailsOf(expenseID int) []model.ExpenseDetail {
	out := []model.ExpenseDetail{}
	for _, d := range m.details {
		if d.ExpenseID == expenseID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memExpenses) install() {
	getExpense = func(_ context.Context, _ database.Querier, id int) (*model.Expense, error) {
		e, ok := m.expenses[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		cp := *e
		cp.Details = m.detailsOf(id)
		cp.Discounts = []model.ExpenseDiscount{}
		for _, d := range m.discounts {
			if d.ExpenseID == id {
				cp.Discounts = append(cp.Discounts, *d)
			}
		}
		return &cp, nil
	}
	getExpenseForUpdate = func(_ context.Context, _ database.Querier, id int) (*model.Expense, error) {
		e, ok := m.expenses[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		cp := *e
		return &cp, nil
	}
	createExpense = func(_ context.Context, _ database.Querier, e *model.Expense) error {
		e.ID = m.id()
		cp := *e
		m.expenses[e.ID] = &cp
		return nil
	}
	updateExpense = func(_ context.Context, _ database.Querier, e *model.Expense) error {
		cp := *e
		m.expenses[e.ID] = &cp
		return nil
	}
	updateExpenseDocument = func(_ context.Context, _ database.Querier, id int, number string, path *string) error {
		m.expenses[id].DocumentNumber = number
		m.expenses[id].DocumentPath = path
		return nil
	}
	deleteExpense = func(_ context.Context, _ database.Querier, id int) error {
		delete(m.expenses, id)
		for did, d := range m.details {
			if d.ExpenseID == id {
				delete(m.details, did)
			}
		}
		return nil
	}
	listDetailsForUpdate = func(_ context.Context, _ database.Querier, expenseID int) ([]model.ExpenseDetail, error) {
		return m.detailsOf(expenseID), nil
	}
	getDetailForUpdate = func(_ context.Context, _ database.Querier, id int) (*model.ExpenseDetail, error) {
		d, ok := m.details[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		cp := *d
		return &cp, nil
	}
	countDetailsForUpdate = func(_ context.Context, _ database.Querier, expenseID int) (int, error) {
		return len(m.detailsOf(expenseID)), nil
	}
	insertDetail = func(_ context.Context, _ database.Querier, d *model.ExpenseDetail) error {
		d.ID = m.id()
		cp := *d
		m.details[d.ID] = &cp
		return nil
	}
	updateDetail = func(_ context.Context, _ database.Querier, d *model.ExpenseDetail) error {
		cur, ok := m.details[d.ID]
		if !ok || cur.ExpenseID != d.ExpenseID {
			return store.ErrNotFound
		}
		cp := *d
		m.details[d.ID] = &cp
		return nil
	}
	deleteDetail = func(_ context.Context, _ database.Querier, expenseID, id int) error {
		cur, ok := m.details[id]
		if !ok || cur.ExpenseID != expenseID {
			return store.ErrNotFound
		}
		delete(m.details, id)
		return nil
	}
	getExpenseDiscount = func(_ context.Context, _ database.Querier, id int) (*model.ExpenseDiscount, error) {
		d, ok := m.discounts[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		cp := *d
		return &cp, nil
	}
	insertExpenseDiscount = func(_ context.Context, _ database.Querier, d *model.ExpenseDiscount) error {
		d.ID = m.id()
		cp := *d
		m.discounts[d.ID] = &cp
		return nil
	}
	updateExpenseDiscount = func(_ context.Context, _ database.Querier, d *model.ExpenseDiscount) error {
		cp := *d
		m.discounts[d.ID] = &cp
		return nil
	}
	deleteExpenseDiscount = func(_ context.Context, _ database.Querier, _ int, id int) error {
		delete(m.discounts, id)
		return nil
	}
}

// fakeFiles records every Save and Delete.
type fakeFiles struct {
	mu      sync.Mutex
	saveErr error
	saved   []string
	deleted []string
}

func (f *fakeFiles) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rel := "documents/" + fh.Filename
	f.saved = append(f.saved, rel)
	return rel, nil
}

func (f *fakeFiles) Delete(_ context.Context, rel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rel)
	return nil
}

func (f *fakeFiles) URL(rel string) string { return "/storage/" + rel }

func (f *fakeFiles) deletedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// inlinePool runs tasks synchronously so assertions need no waiting.
type inlinePool struct{ ran []string }

func (p *inlinePool) Submit(t worker.Task) bool {
	p.ran = append(p.ran, t.Name)
	_ = t.Run(context.Background())
	return true
}

func (p *inlinePool) Stop() {}

func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

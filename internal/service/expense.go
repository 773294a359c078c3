package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/filestore"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
	"expense-ledger/internal/validation"
	"expense-ledger/internal/worker"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DateLayout = "2006-01-02"

var (
	getExpense            = store.GetExpense
	getExpenseForUpdate   = store.GetExpenseForUpdate
	createExpense         = store.CreateExpense
	updateExpense         = store.UpdateExpense
	updateExpenseDocument = store.UpdateExpenseDocument
	deleteExpense         = store.DeleteExpense
	listDetailsForUpdate  = store.ListDetailsForUpdate
	getDetailForUpdate    = store.GetDetailForUpdate
	countDetailsForUpdate = store.CountDetailsForUpdate
	insertDetail          = store.InsertDetail
	updateDetail          = store.UpdateDetail
	deleteDetail          = store.DeleteDetail
)

type DetailInput struct {
	ID          *int            `json:"id,omitempty"`
	Name        string          `json:"name" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0,lte=9999999999.99"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0.01,lte=9999999999.99"`
	Observation string          `json:"observation" validate:"max=2000"`
	CategoryID  int             `json:"category_id" validate:"required"`
	Destroy     bool            `json:"_destroy"`
}

type ExpenseInput struct {
	Name            string                `json:"name" validate:"required,max=255"`
	ExpenseDate     string                `json:"expense_date" validate:"required,datetime=2006-01-02"`
	Observation     string                `json:"observation" validate:"max=2000"`
	DocumentNumber  string                `json:"document_number" validate:"max=255"`
	PaymentMethodID int                   `json:"payment_method_id" validate:"required"`
	Details         []DetailInput         `json:"details" validate:"-"`
	DeleteDocument  bool                  `json:"delete_document"`
	Document        *multipart.FileHeader `json:"-" validate:"-"`
}

// DocumentInput patches only the document fields of an expense.
type DocumentInput struct {
	DocumentNumber *string               `json:"document_number" validate:"omitempty,max=255"`
	DeleteDocument bool                  `json:"delete_document"`
	Document       *multipart.FileHeader `json:"-" validate:"-"`
}

// Expenses owns every write to an expense and its stored document.
type Expenses struct {
	DB    database.DB
	Files filestore.Store
	Pool  worker.Pool
	Log   *zap.Logger
}

func NewExpenses(db database.DB, files filestore.Store, pool worker.Pool, log *zap.Logger) *Expenses {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expenses{DB: db, Files: files, Pool: pool, Log: log}
}

// ValidateExpenseInput checks the header and every detail that is not
// flagged for destruction. Detail keys look like "details.2.amount".
func ValidateExpenseInput(in ExpenseInput) error {
	errs := validation.Errors{}
	if err := validator.Validate(&in); err != nil {
		errs.Merge("", validation.FromError(err))
	}
	for i, d := range in.Details {
		if d.Destroy {
			continue
		}
		if err := validator.Validate(&d); err != nil {
			errs.Merge(fmt.Sprintf("details.%d.", i), validation.FromError(err))
		}
	}
	return errs.Err()
}

type detailPlan struct {
	updates []model.ExpenseDetail
	inserts []model.ExpenseDetail
	deletes []int
}

// planDetails reconciles submitted rows with the stored ones. Every stored id
// must come back, either to be updated or flagged for destruction; an id the
// expense does not own is rejected outright.
func planDetails(expenseID int, existing []model.ExpenseDetail, submitted []DetailInput) (detailPlan, error) {
	owned := make(map[int]bool, len(existing))
	for _, d := range existing {
		owned[d.ID] = true
	}

	var plan detailPlan
	errs := validation.Errors{}
	seen := map[int]bool{}
	for i, in := range submitted {
		if in.ID == nil {
			if !in.Destroy {
				plan.inserts = append(plan.inserts, in.toModel(expenseID))
			}
			continue
		}
		id := *in.ID
		if !owned[id] {
			return detailPlan{}, ErrDetailMismatch
		}
		if seen[id] {
			errs.Add(fmt.Sprintf("details.%d.id", i), "was submitted more than once")
			continue
		}
		seen[id] = true
		if in.Destroy {
			plan.deletes = append(plan.deletes, id)
			continue
		}
		d := in.toModel(expenseID)
		d.ID = id
		plan.updates = append(plan.updates, d)
	}

	var missing []string
	for _, d := range existing {
		if !seen[d.ID] {
			missing = append(missing, strconv.Itoa(d.ID))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs.Add("details", "missing existing detail "+strings.Join(missing, ", ")+"; send it back or mark it for removal")
	}
	if len(plan.updates)+len(plan.inserts) == 0 {
		errs.Add("details", "an expense needs at least one detail")
	}
	if err := errs.Err(); err != nil {
		return detailPlan{}, err
	}
	return plan, nil
}

func (in DetailInput) toModel(expenseID int) model.ExpenseDetail {
	return model.ExpenseDetail{
		ExpenseID:   expenseID,
		Name:        strings.TrimSpace(in.Name),
		Amount:      in.Amount,
		Quantity:    in.Quantity,
		Observation: in.Observation,
		CategoryID:  in.CategoryID,
	}
}

func (p detailPlan) apply(ctx context.Context, q database.Querier, expenseID int) error {
	for _, id := range p.deletes {
		if err := deleteDetail(ctx, q, expenseID, id); err != nil {
			return err
		}
	}
	for i := range p.updates {
		p.updates[i].ExpenseID = expenseID
		if err := updateDetail(ctx, q, &p.updates[i]); err != nil {
			return err
		}
	}
	for i := range p.inserts {
		p.inserts[i].ExpenseID = expenseID
		if err := insertDetail(ctx, q, &p.inserts[i]); err != nil {
			return err
		}
	}
	return nil
}

// replaceDocument applies the document rules to e (delete beats a new upload,
// which beats leaving it alone) and returns the path that is no longer used.
func replaceDocument(e *model.Expense, remove bool, newPath string) (stale string) {
	switch {
	case remove:
		if e.DocumentPath != nil {
			stale = *e.DocumentPath
		}
		e.DocumentPath = nil
	case newPath != "":
		if e.DocumentPath != nil {
			stale = *e.DocumentPath
		}
		e.DocumentPath = &newPath
	}
	return stale
}

// Save creates the expense when id is 0, otherwise updates it. Everything
// except storing the upload happens in one transaction.
func (s *Expenses) Save(ctx context.Context, id int, in ExpenseInput) (*model.Expense, error) {
	if err := ValidateExpenseInput(in); err != nil {
		return nil, err
	}
	date, err := time.Parse(DateLayout, in.ExpenseDate)
	if err != nil {
		return nil, validation.Errors{"expense_date": "must be a date formatted as YYYY-MM-DD"}
	}

	newPath, err := s.storeUpload(ctx, in.Document, in.DeleteDocument)
	if err != nil {
		return nil, err
	}

	var stale string
	var savedID int
	err = database.WithTx(ctx, s.DB, func(q database.Querier) error {
		e := &model.Expense{}
		existing := []model.ExpenseDetail{}
		if id != 0 {
			cur, err := getExpenseForUpdate(ctx, q, id)
			if err != nil {
				return err
			}
			e = cur
			if existing, err = listDetailsForUpdate(ctx, q, id); err != nil {
				return err
			}
		}

		plan, err := planDetails(id, existing, in.Details)
		if err != nil {
			return err
		}

		e.Name = strings.TrimSpace(in.Name)
		e.ExpenseDate = date
		e.Observation = in.Observation
		e.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
		e.PaymentMethodID = in.PaymentMethodID
		stale = replaceDocument(e, in.DeleteDocument, newPath)

		if id == 0 {
			err = createExpense(ctx, q, e)
		} else {
			err = updateExpense(ctx, q, e)
		}
		if err != nil {
			return err
		}
		savedID = e.ID
		return plan.apply(ctx, q, e.ID)
	})
	if err != nil {
		if newPath != "" {
			s.removeNow(ctx, newPath)
		}
		return nil, s.saveError("SaveExpense", err)
	}

	if stale != "" {
		s.discard(stale)
	}
	return s.reload(ctx, savedID)
}

// UpdateDocument changes the document number and/or file of an existing expense.
func (s *Expenses) UpdateDocument(ctx context.Context, id int, in DocumentInput) (*model.Expense, error) {
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}
	newPath, err := s.storeUpload(ctx, in.Document, in.DeleteDocument)
	if err != nil {
		return nil, err
	}

	var stale string
	err = database.WithTx(ctx, s.DB, func(q database.Querier) error {
		e, err := getExpenseForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if in.DocumentNumber != nil {
			e.DocumentNumber = strings.TrimSpace(*in.DocumentNumber)
		}
		stale = replaceDocument(e, in.DeleteDocument, newPath)
		return updateExpenseDocument(ctx, q, e.ID, e.DocumentNumber, e.DocumentPath)
	})
	if err != nil {
		if newPath != "" {
			s.removeNow(ctx, newPath)
		}
		return nil, s.saveError("UpdateDocument", err)
	}
	if stale != "" {
		s.discard(stale)
	}
	return s.reload(ctx, id)
}

// Delete removes the expense with its details and discounts, then queues the
// stored document for removal.
func (s *Expenses) Delete(ctx context.Context, id int) error {
	var stale string
	err := database.WithTx(ctx, s.DB, func(q database.Querier) error {
		e, err := getExpenseForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if e.DocumentPath != nil {
			stale = *e.DocumentPath
		}
		return deleteExpense(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("DeleteExpense: %w", err)
	}
	if stale != "" {
		s.discard(stale)
	}
	return nil
}

// UpdateDetail edits one detail of the expense.
func (s *Expenses) UpdateDetail(ctx context.Context, expenseID, detailID int, in DetailInput) (*model.Expense, error) {
	in.Destroy = false
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}
	err := database.WithTx(ctx, s.DB, func(q database.Querier) error {
		if _, err := getExpenseForUpdate(ctx, q, expenseID); err != nil {
			return err
		}
		cur, err := getDetailForUpdate(ctx, q, detailID)
		if err != nil {
			return err
		}
		if cur.ExpenseID != expenseID {
			return ErrDetailMismatch
		}
		d := in.toModel(expenseID)
		d.ID = detailID
		return updateDetail(ctx, q, &d)
	})
	if err != nil {
		return nil, s.saveError("UpdateDetail", err)
	}
	return s.reload(ctx, expenseID)
}

// DeleteDetail removes one detail unless it is the last one left.
func (s *Expenses) DeleteDetail(ctx context.Context, expenseID, detailID int) error {
	err := database.WithTx(ctx, s.DB, func(q database.Querier) error {
		if _, err := getExpenseForUpdate(ctx, q, expenseID); err != nil {
			return err
		}
		cur, err := getDetailForUpdate(ctx, q, detailID)
		if err != nil {
			return err
		}
		if cur.ExpenseID != expenseID {
			return ErrDetailMismatch
		}
		n, err := countDetailsForUpdate(ctx, q, expenseID)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastDetail
		}
		return deleteDetail(ctx, q, expenseID, detailID)
	})
	if err != nil {
		return fmt.Errorf("DeleteDetail: %w", err)
	}
	return nil
}

func (s *Expenses) storeUpload(ctx context.Context, fh *multipart.FileHeader, remove bool) (string, error) {
	if remove || fh == nil || s.Files == nil {
		return "", nil
	}
	rel, err := s.Files.Save(ctx, fh)
	switch {
	case errors.Is(err, filestore.ErrTooLarge):
		return "", validation.Errors{"document": "the document is too large"}
	case errors.Is(err, filestore.ErrUnsupportedType):
		return "", validation.Errors{"document": "the document must be an image (jpeg, png, webp, gif) or a PDF"}
	case err != nil:
		return "", fmt.Errorf("store document: %w", err)
	}
	return rel, nil
}

// removeNow undoes an upload whose transaction failed.
func (s *Expenses) removeNow(ctx context.Context, rel string) {
	if err := s.Files.Delete(context.WithoutCancel(ctx), rel); err != nil {
		s.Log.Warn("could not remove orphaned upload", zap.String("path", rel), zap.Error(err))
	}
}

// discard removes a file that committed data no longer points to.
func (s *Expenses) discard(rel string) {
	task := worker.Task{
		Name: "delete document " + rel,
		Run:  func(ctx context.Context) error { return s.Files.Delete(ctx, rel) },
	}
	if s.Pool == nil || !s.Pool.Submit(task) {
		if err := task.Run(context.Background()); err != nil {
			s.Log.Warn("could not remove stale document", zap.String("path", rel), zap.Error(err))
		}
	}
}

func (s *Expenses) reload(ctx context.Context, id int) (*model.Expense, error) {
	e, err := getExpense(ctx, s.DB, id)
	if err != nil {
		return nil, fmt.Errorf("reload expense: %w", err)
	}
	return e, nil
}

// saveError passes client-facing errors through and wraps the rest.
func (s *Expenses) saveError(op string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs
	}
	return fmt.Errorf("%s: %w", op, err)
}

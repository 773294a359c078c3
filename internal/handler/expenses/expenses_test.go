package expenses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/store"
	"expense-ledger/internal/ui"
	"expense-ledger/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func restore() {
	listExpenses = store.ListExpenses
	getExpense = store.GetExpense
	activeCategories = store.ActiveCategories
	activePaymentMethods = store.ActivePaymentMethods
	allDiscounts = store.AllDiscounts
	buildDashboard = service.BuildDashboard
	timeNow = time.Now
}

type fakeService struct {
	SaveFn           func(ctx context.Context, id int, in service.ExpenseInput) (*model.Expense, error)
	DeleteFn         func(ctx context.Context, id int) error
	UpdateDocumentFn func(ctx context.Context, id int, in service.DocumentInput) (*model.Expense, error)
	UpdateDetailFn   func(ctx context.Context, expenseID, detailID int, in service.DetailInput) (*model.Expense, error)
	DeleteDetailFn   func(ctx context.Context, expenseID, detailID int) error
	ApplyDiscountFn  func(ctx context.Context, expenseID int, in service.ExpenseDiscountInput) (*model.Expense, error)
	UpdateDiscountFn func(ctx context.Context, expenseID, edID int, in service.ExpenseDiscountInput) (*model.Expense, error)
	RemoveDiscountFn func(ctx context.Context, expenseID, edID int) error
}

func (f *fakeService) Save(ctx context.Context, id int, in service.ExpenseInput) (*model.Expense, error) {
	if f.SaveFn != nil {
		return f.SaveFn(ctx, id, in)
	}
	panic("unexpected Save")
}

func (f *fakeService) Delete(ctx context.Context, id int) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	panic("unexpected Delete")
}

func (f *fakeService) UpdateDocument(ctx context.Context, id int, in service.DocumentInput) (*model.Expense, error) {
	if f.UpdateDocumentFn != nil {
		return f.UpdateDocumentFn(ctx, id, in)
	}
	panic("unexpected UpdateDocument")
}

func (f *fakeService) UpdateDetail(ctx context.Context, expenseID, detailID int, in service.DetailInput) (*model.Expense, error) {
	if f.UpdateDetailFn != nil {
		return f.UpdateDetailFn(ctx, expenseID, detailID, in)
	}
	panic("unexpected UpdateDetail")
}

func (f *fakeService) DeleteDetail(ctx context.Context, expenseID, detailID int) error {
	if f.DeleteDetailFn != nil {
		return f.DeleteDetailFn(ctx, expenseID, detailID)
	}
	panic("unexpected DeleteDetail")
}

func (f *fakeService) ApplyDiscount(ctx context.Context, expenseID int, in service.ExpenseDiscountInput) (*model.Expense, error) {
	if f.ApplyDiscountFn != nil {
		return f.ApplyDiscountFn(ctx, expenseID, in)
	}
	panic("unexpected ApplyDiscount")
}

func (f *fakeService) UpdateDiscount(ctx context.Context, expenseID, edID int, in service.ExpenseDiscountInput) (*model.Expense, error) {
	if f.UpdateDiscountFn != nil {
		return f.UpdateDiscountFn(ctx, expenseID, edID, in)
	}
	panic("unexpected UpdateDiscount")
}

func (f *fakeService) RemoveDiscount(ctx context.Context, expenseID, edID int) error {
	if f.RemoveDiscountFn != nil {
		return f.RemoveDiscountFn(ctx, expenseID, edID)
	}
	panic("unexpected RemoveDiscount")
}

func fileURL(rel string) string { return "/storage/" + rel }

func sample() model.Expense {
	path := "documents/abc.pdf"
	return model.Expense{
		ID:              5,
		Name:            "Supermarket",
		ExpenseDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DocumentPath:    &path,
		PaymentMethodID: 1,
		PaymentMethod:   &model.PaymentMethod{ID: 1, Name: "Card", Tags: []string{"card"}},
		Details: []model.ExpenseDetail{
			{ID: 10, Name: "Rice", Amount: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(2), CategoryID: 3},
			{ID: 11, Name: "Milk", Amount: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(1), CategoryID: 3},
		},
		Discounts: []model.ExpenseDiscount{{ID: 4, DiscountID: 2, DiscountAmount: decimal.NewFromInt(20)}},
	}
}

func newCtx(req *http.Request, names ...string) (echo.Context, *httptest.ResponseRecorder, *session.Session) {
	e := echo.New()
	e.Validator = validation.New()
	req.Header.Set(ui.HeaderInertia, "true")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(names) > 0 {
		var keys, vals []string
		for i := 0; i+1 < len(names); i += 2 {
			keys = append(keys, names[i])
			vals = append(vals, names[i+1])
		}
		c.SetParamNames(keys...)
		c.SetParamValues(vals...)
	}
	sess := &session.Session{UserID: 1}
	session.Attach(c, sess)
	return c, rec, sess
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func formReq(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func multipartReq(t *testing.T, method, target string, fields map[string]string, file string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != "" {
		fw, err := w.CreateFormFile("document", file)
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func renderer(t *testing.T) *ui.Renderer {
	r, err := ui.NewRenderer("Ledger", "v1")
	require.NoError(t, err)
	return r
}

func TestBindExpenseMultipart(t *testing.T) {
	req := multipartReq(t, http.MethodPost, "/expenses", map[string]string{
		"name":                     "Supermarket",
		"expense_date":             "2025-03-01",
		"payment_method_id":        "1",
		"document_number":          "F-1",
		"details[0][name]":         "Rice",
		"details[0][amount]":       "100.50",
		"details[0][quantity]":     "2",
		"details[0][category_id]":  "3",
		"details[2][id]":           "11",
		"details[2][_destroy]":     "1",
		"details[10][id]":          "12",
		"details[10][name]":        "Milk",
		"details[10][amount]":      "50",
		"details[10][quantity]":    "1",
		"details[10][category_id]": "3",
	}, "receipt.pdf", []byte("%PDF-1.4"))
	c, _, _ := newCtx(req)

	in, err := bindExpense(c)
	require.NoError(t, err)
	require.Equal(t, "Supermarket", in.Name)
	require.Equal(t, 1, in.PaymentMethodID)
	require.Len(t, in.Details, 3)
	require.Nil(t, in.Details[0].ID)
	require.Equal(t, "100.5", in.Details[0].Amount.String())
	require.True(t, in.Details[1].Destroy)
	require.Equal(t, 11, *in.Details[1].ID)
	require.Equal(t, 12, *in.Details[2].ID)
	require.Equal(t, "Milk", in.Details[2].Name)
	require.NotNil(t, in.Document)
	require.Equal(t, "receipt.pdf", in.Document.Filename)
}

func TestBindExpenseFormErrors(t *testing.T) {
	req := formReq(http.MethodPost, "/expenses", url.Values{
		"name":                 {"x"},
		"payment_method_id":    {"one"},
		"details[0][name]":     {"Rice"},
		"details[0][amount]":   {"abc"},
		"details[0][quantity]": {""},
	})
	c, _, _ := newCtx(req)

	_, err := bindExpense(c)
	verrs := validation.FromError(err)
	require.Equal(t, "must be a whole number", verrs["payment_method_id"])
	require.Equal(t, "must be a number", verrs["details.0.amount"])
	require.Equal(t, "is required", verrs["details.0.quantity"])
}

func TestBindExpenseJSON(t *testing.T) {
	c, _, _ := newCtx(jsonReq(http.MethodPut, "/expenses/5", `{
		"name": "Supermarket", "expense_date": "2025-03-01", "payment_method_id": 1,
		"details": [{"id": 10, "name": "Rice", "amount": "100", "quantity": 2, "category_id": 3}, {"id": 11, "_destroy": true}]
	}`))
	in, err := bindExpense(c)
	require.NoError(t, err)
	require.Len(t, in.Details, 2)
	require.True(t, in.Details[0].Quantity.Equal(decimal.NewFromInt(2)))
	require.True(t, in.Details[1].Destroy)
	require.Nil(t, in.Document)
}

func TestStoreHandler(t *testing.T) {
	var got service.ExpenseInput
	svc := &fakeService{SaveFn: func(_ context.Context, id int, in service.ExpenseInput) (*model.Expense, error) {
		require.Zero(t, id)
		got = in
		e := sample()
		return &e, nil
	}}
	c, rec, sess := newCtx(jsonReq(http.MethodPost, "/expenses", `{"name":"Supermarket","expense_date":"2025-03-01","payment_method_id":1}`))
	require.NoError(t, StoreHandler(svc)(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/expenses/5/edit", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "Expense created.", sess.Flash["success"])
	require.Equal(t, "Supermarket", got.Name)

	svc.SaveFn = func(context.Context, int, service.ExpenseInput) (*model.Expense, error) {
		return nil, validation.Errors{"details": "at least one detail is required"}
	}
	c, rec, sess = newCtx(jsonReq(http.MethodPost, "/expenses", `{}`))
	require.NoError(t, StoreHandler(svc)(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/expenses/create", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "at least one detail is required", sess.Errors["details"])

	c, rec, _ = newCtx(jsonReq(http.MethodPost, "/expenses", `{"name":`))
	err := StoreHandler(svc)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateHandler(t *testing.T) {
	svc := &fakeService{SaveFn: func(_ context.Context, id int, _ service.ExpenseInput) (*model.Expense, error) {
		require.Equal(t, 5, id)
		return nil, fmt.Errorf("SaveExpense: %w", service.ErrDetailMismatch)
	}}
	req := jsonReq(http.MethodPut, "/expenses/5", `{"name":"x"}`)
	req.Header.Set("Referer", "/expenses/5/edit?tab=details")
	c, rec, sess := newCtx(req, "id", "5")
	require.NoError(t, UpdateHandler(svc)(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/expenses/5/edit?tab=details", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "Detail does not belong to this expense.", sess.Flash["error"])

	svc.SaveFn = func(context.Context, int, service.ExpenseInput) (*model.Expense, error) {
		return nil, fmt.Errorf("SaveExpense: %w", store.ErrNotFound)
	}
	c, _, _ = newCtx(jsonReq(http.MethodPut, "/expenses/9", `{}`), "id", "9")
	var he *echo.HTTPError
	require.ErrorAs(t, UpdateHandler(svc)(c), &he)
	require.Equal(t, http.StatusNotFound, he.Code)

	c, _, _ = newCtx(jsonReq(http.MethodPut, "/expenses/abc", `{}`), "id", "abc")
	require.ErrorAs(t, UpdateHandler(svc)(c), &he)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestDestroyHandlers(t *testing.T) {
	deleted := 0
	svc := &fakeService{
		DeleteFn: func(_ context.Context, id int) error { deleted = id; return nil },
		DeleteDetailFn: func(_ context.Context, expenseID, detailID int) error {
			require.Equal(t, 5, expenseID)
			require.Equal(t, 10, detailID)
			return fmt.Errorf("DeleteDetail: %w", service.ErrLastDetail)
		},
		RemoveDiscountFn: func(_ context.Context, expenseID, edID int) error {
			require.Equal(t, 4, edID)
			return nil
		},
	}

	c, rec, sess := newCtx(httptest.NewRequest(http.MethodDelete, "/expenses/5", nil), "id", "5")
	require.NoError(t, DestroyHandler(svc)(c))
	require.Equal(t, 5, deleted)
	require.Equal(t, "/expenses", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "Expense deleted.", sess.Flash["success"])

	c, rec, sess = newCtx(httptest.NewRequest(http.MethodDelete, "/expenses/5/details/10", nil), "id", "5", "detail_id", "10")
	require.NoError(t, DestroyDetailHandler(svc)(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/expenses/5/edit", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "An expense must keep at least one detail.", sess.Flash["error"])

	c, _, sess = newCtx(httptest.NewRequest(http.MethodDelete, "/expenses/5/discounts/4", nil), "id", "5", "expense_discount_id", "4")
	require.NoError(t, RemoveDiscountHandler(svc)(c))
	require.Equal(t, "Discount removed.", sess.Flash["success"])
}

func TestDetailAndDiscountForms(t *testing.T) {
	var detail service.DetailInput
	var discount service.ExpenseDiscountInput
	svc := &fakeService{
		UpdateDetailFn: func(_ context.Context, expenseID, detailID int, in service.DetailInput) (*model.Expense, error) {
			require.Equal(t, 10, detailID)
			detail = in
			e := sample()
			return &e, nil
		},
		ApplyDiscountFn: func(_ context.Context, expenseID int, in service.ExpenseDiscountInput) (*model.Expense, error) {
			discount = in
			e := sample()
			return &e, nil
		},
		UpdateDiscountFn: func(_ context.Context, expenseID, edID int, in service.ExpenseDiscountInput) (*model.Expense, error) {
			return nil, fmt.Errorf("UpdateDiscount: %w", service.ErrDiscountMismatch)
		},
	}

	c, rec, sess := newCtx(formReq(http.MethodPut, "/expenses/5/details/10", url.Values{
		"name": {" Rice "}, "amount": {"12.5"}, "quantity": {"3"}, "category_id": {"3"}, "id": {"99"},
	}), "id", "5", "detail_id", "10")
	require.NoError(t, UpdateDetailHandler(svc)(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "Detail updated.", sess.Flash["success"])
	require.Equal(t, "Rice", detail.Name)
	require.Equal(t, "12.5", detail.Amount.String())
	require.Nil(t, detail.ID)

	c, _, sess = newCtx(formReq(http.MethodPost, "/expenses/5/discounts", url.Values{
		"discount_id": {"2"}, "discount_amount": {"20"}, "date": {"2025-03-02"},
	}), "id", "5")
	require.NoError(t, ApplyDiscountHandler(svc)(c))
	require.Equal(t, "Discount applied.", sess.Flash["success"])
	require.Equal(t, 2, discount.DiscountID)
	require.Equal(t, "2025-03-02", discount.Date)

	c, _, sess = newCtx(formReq(http.MethodPost, "/expenses/5/discounts", url.Values{"discount_amount": {"x"}}), "id", "5")
	require.NoError(t, ApplyDiscountHandler(svc)(c))
	require.Equal(t, "must be a number", sess.Errors["discount_amount"])

	c, _, sess = newCtx(jsonReq(http.MethodPut, "/expenses/5/discounts/4", `{"discount_id":2,"discount_amount":"5"}`), "id", "5", "expense_discount_id", "4")
	require.NoError(t, UpdateDiscountHandler(svc)(c))
	require.Equal(t, "Discount does not belong to this expense.", sess.Flash["error"])
}

func TestIndexAndEditPages(t *testing.T) {
	t.Cleanup(restore)
	var got store.ExpenseFilter
	listExpenses = func(_ context.Context, _ database.Querier, f store.ExpenseFilter) (store.PageResult[model.Expense], error) {
		got = f
		return store.PageResult[model.Expense]{Items: []model.Expense{sample()}, Total: 1, Page: 1, PerPage: 15, LastPage: 1}, nil
	}
	getExpense = func(_ context.Context, _ database.Querier, id int) (*model.Expense, error) {
		if id != 5 {
			return nil, fmt.Errorf("GetExpense: %w", store.ErrNotFound)
		}
		e := sample()
		return &e, nil
	}
	activeCategories = func(context.Context, database.Querier) ([]model.Category, error) {
		return []model.Category{{ID: 3, Name: "Groceries", IsActive: true}}, nil
	}
	activePaymentMethods = func(context.Context, database.Querier) ([]model.PaymentMethod, error) {
		return []model.PaymentMethod{{ID: 1, Name: "Card", IsActive: true}}, nil
	}
	allDiscounts = func(context.Context, database.Querier) ([]model.Discount, error) {
		return []model.Discount{{ID: 2, Name: "Loyalty"}}, nil
	}
	r := renderer(t)
	db := &database.FakeDB{}

	c, rec, _ := newCtx(httptest.NewRequest(http.MethodGet, "/expenses?search=market&from=2025-03-01&page=2", nil))
	require.NoError(t, IndexHandler(db, r, fileURL)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "market", got.Search)
	require.Equal(t, 2, got.Page.Number)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *got.From)
	require.Nil(t, got.To)
	body := rec.Body.String()
	require.Contains(t, body, `"component":"Expenses/Index"`)
	require.Contains(t, body, `"total":"230.00"`)
	require.Contains(t, body, `"document_url":"/storage/documents/abc.pdf"`)

	c, rec, sess := newCtx(httptest.NewRequest(http.MethodGet, "/expenses?from=March", nil))
	require.NoError(t, IndexHandler(db, r, fileURL)(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, sess.Errors, "from")

	c, rec, _ = newCtx(httptest.NewRequest(http.MethodGet, "/expenses/create", nil))
	require.NoError(t, CreateHandler(db, r)(c))
	require.Contains(t, rec.Body.String(), `"component":"Expenses/Create"`)
	require.Contains(t, rec.Body.String(), `"Groceries"`)

	c, rec, _ = newCtx(httptest.NewRequest(http.MethodGet, "/expenses/5/edit", nil), "id", "5")
	require.NoError(t, EditHandler(db, r, fileURL)(c))
	body = rec.Body.String()
	require.Contains(t, body, `"component":"Expenses/Edit"`)
	require.Contains(t, body, `"expense":{"id":5`)
	require.Contains(t, body, `"Loyalty"`)

	c, _, _ = newCtx(httptest.NewRequest(http.MethodGet, "/expenses/6/edit", nil), "id", "6")
	var he *echo.HTTPError
	require.ErrorAs(t, EditHandler(db, r, fileURL)(c), &he)
	require.Equal(t, http.StatusNotFound, he.Code)

	activeCategories = func(context.Context, database.Querier) ([]model.Category, error) {
		return nil, errors.New("db down")
	}
	c, rec, sess = newCtx(httptest.NewRequest(http.MethodGet, "/expenses/create", nil))
	require.NoError(t, CreateHandler(db, r)(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.NotEmpty(t, sess.Flash["error"])
}

func TestAPIHandlers(t *testing.T) {
	t.Cleanup(restore)
	listExpenses = func(context.Context, database.Querier, store.ExpenseFilter) (store.PageResult[model.Expense], error) {
		return store.PageResult[model.Expense]{Items: []model.Expense{sample()}, Total: 1, Page: 1, PerPage: 15, LastPage: 1}, nil
	}
	getExpense = func(_ context.Context, _ database.Querier, id int) (*model.Expense, error) {
		return nil, fmt.Errorf("GetExpense: %w", store.ErrNotFound)
	}
	db := &database.FakeDB{}

	c, rec, _ := newCtx(httptest.NewRequest(http.MethodGet, "/api/expenses", nil))
	require.NoError(t, ListAPIHandler(db, fileURL)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"subtotal":"250.00"`)
	require.Contains(t, rec.Body.String(), `"current_page":1`)

	c, rec, _ = newCtx(httptest.NewRequest(http.MethodGet, "/api/expenses?per_page=500", nil))
	require.NoError(t, ListAPIHandler(db, fileURL)(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"per_page"`)

	c, rec, _ = newCtx(httptest.NewRequest(http.MethodGet, "/api/expenses/8", nil), "id", "8")
	require.NoError(t, ShowAPIHandler(db, fileURL)(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var gotDoc service.DocumentInput
	svc := &fakeService{UpdateDocumentFn: func(_ context.Context, id int, in service.DocumentInput) (*model.Expense, error) {
		gotDoc = in
		e := sample()
		return &e, nil
	}}
	req := multipartReq(t, http.MethodPatch, "/api/expenses/5/document", map[string]string{"document_number": "F-9"}, "scan.png", []byte("\x89PNG\r\n\x1a\n"))
	c, rec, _ = newCtx(req, "id", "5")
	require.NoError(t, DocumentAPIHandler(svc, fileURL)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "F-9", *gotDoc.DocumentNumber)
	require.Equal(t, "scan.png", gotDoc.Document.Filename)

	req = multipartReq(t, http.MethodPatch, "/api/expenses/5/document", map[string]string{"delete_document": "true"}, "", nil)
	c, _, _ = newCtx(req, "id", "5")
	require.NoError(t, DocumentAPIHandler(svc, fileURL)(c))
	require.Nil(t, gotDoc.DocumentNumber)
	require.Nil(t, gotDoc.Document)
	require.True(t, gotDoc.DeleteDocument)

	svc.UpdateDocumentFn = func(context.Context, int, service.DocumentInput) (*model.Expense, error) {
		return nil, validation.Errors{"document": "the document is too large"}
	}
	c, rec, _ = newCtx(jsonReq(http.MethodPatch, "/api/expenses/5/document", `{"document_number":"F-1"}`), "id", "5")
	require.NoError(t, DocumentAPIHandler(svc, fileURL)(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "the document is too large")
}

func TestStatisticsAPIHandler(t *testing.T) {
	t.Cleanup(restore)
	now := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	var gotTo *time.Time
	buildDashboard = func(_ context.Context, _ database.Querier, from, to *time.Time, n time.Time) (*service.Dashboard, error) {
		require.Equal(t, now, n)
		gotTo = to
		return &service.Dashboard{From: "2025-03-24", To: "2025-04-24", Total: decimal.RequireFromString("53")}, nil
	}

	c, rec, _ := newCtx(httptest.NewRequest(http.MethodGet, "/api/expenses/statistics?to=2025-04-01", nil))
	require.NoError(t, StatisticsAPIHandler(&database.FakeDB{})(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *gotTo)
	require.Contains(t, rec.Body.String(), `"from":"2025-03-24"`)

	c, rec, _ = newCtx(httptest.NewRequest(http.MethodGet, "/api/expenses/statistics?from=yesterday", nil))
	require.NoError(t, StatisticsAPIHandler(&database.FakeDB{})(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

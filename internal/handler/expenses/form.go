package expenses

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"expense-ledger/internal/service"
	"expense-ledger/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var detailKey = regexp.MustCompile(`^details\[(\d+)\]\[([a-z_]+)\]$`)

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// formReader pulls typed values out of urlencoded or multipart fields and
// collects conversion problems under the field's error key.
type formReader struct {
	values url.Values
	errs   validation.Errors
}

func newFormReader(c echo.Context) (*formReader, error) {
	values, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form data")
	}
	return &formReader{values: values, errs: validation.Errors{}}, nil
}

func (f *formReader) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *formReader) str(key string) string {
	return f.values.Get(key)
}

func (f *formReader) whole(key, errKey string) int {
	s := strings.TrimSpace(f.values.Get(key))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f.errs.Add(errKey, "must be a whole number")
	}
	return n
}

func (f *formReader) dec(key, errKey string) decimal.Decimal {
	s := strings.TrimSpace(f.values.Get(key))
	if s == "" {
		f.errs.Add(errKey, "is required")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f.errs.Add(errKey, "must be a number")
	}
	return d
}

func (f *formReader) flag(key string) bool {
	switch strings.ToLower(f.values.Get(key)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// detailIndexes returns the distinct i of every details[i][...] key in order.
func (f *formReader) detailIndexes() []int {
	seen := map[int]bool{}
	var out []int
	for k := range f.values {
		m := detailKey.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		i, _ := strconv.Atoi(m[1])
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// detail reads one detail. key maps a field name to its form key. A detail
// flagged with _destroy only needs its id.
func (f *formReader) detail(key func(string) string, errPrefix string) service.DetailInput {
	var d service.DetailInput
	if id := f.whole(key("id"), errPrefix+"id"); id > 0 {
		d.ID = &id
	}
	if d.Destroy = f.flag(key("_destroy")); d.Destroy {
		return d
	}
	d.Name = strings.TrimSpace(f.str(key("name")))
	d.Amount = f.dec(key("amount"), errPrefix+"amount")
	d.Quantity = f.dec(key("quantity"), errPrefix+"quantity")
	d.Observation = f.str(key("observation"))
	d.CategoryID = f.whole(key("category_id"), errPrefix+"category_id")
	return d
}

// formFile returns the uploaded file under key, or nil when none was sent.
func formFile(c echo.Context, key string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid upload")
	}
	return fh, nil
}

// bindExpense reads the expense form. JSON bodies carry no document; forms
// send details as details[i][field].
func bindExpense(c echo.Context) (service.ExpenseInput, error) {
	var in service.ExpenseInput
	if isJSON(c) {
		if err := c.Bind(&in); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return in, nil
	}

	f, err := newFormReader(c)
	if err != nil {
		return in, err
	}
	in.Name = f.str("name")
	in.ExpenseDate = f.str("expense_date")
	in.Observation = f.str("observation")
	in.DocumentNumber = f.str("document_number")
	in.PaymentMethodID = f.whole("payment_method_id", "payment_method_id")
	in.DeleteDocument = f.flag("delete_document")
	for n, i := range f.detailIndexes() {
		key := func(field string) string { return fmt.Sprintf("details[%d][%s]", i, field) }
		in.Details = append(in.Details, f.detail(key, fmt.Sprintf("details.%d.", n)))
	}
	if in.Document, err = formFile(c, "document"); err != nil {
		return in, err
	}
	return in, f.errs.Err()
}

func bindDetail(c echo.Context) (service.DetailInput, error) {
	var in service.DetailInput
	if isJSON(c) {
		if err := c.Bind(&in); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return in, nil
	}
	f, err := newFormReader(c)
	if err != nil {
		return in, err
	}
	in = f.detail(func(field string) string { return field }, "")
	in.ID = nil
	return in, f.errs.Err()
}

func bindDiscount(c echo.Context) (service.ExpenseDiscountInput, error) {
	var in service.ExpenseDiscountInput
	if isJSON(c) {
		if err := c.Bind(&in); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return in, nil
	}
	f, err := newFormReader(c)
	if err != nil {
		return in, err
	}
	in.DiscountID = f.whole("discount_id", "discount_id")
	in.DiscountAmount = f.dec("discount_amount", "discount_amount")
	in.Observation = f.str("observation")
	in.Date = f.str("date")
	return in, f.errs.Err()
}

// bindDocument reads a document patch. document_number is only changed when
// the field is present.
func bindDocument(c echo.Context) (service.DocumentInput, error) {
	var in service.DocumentInput
	if isJSON(c) {
		if err := c.Bind(&in); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return in, nil
	}
	f, err := newFormReader(c)
	if err != nil {
		return in, err
	}
	if f.has("document_number") {
		n := f.str("document_number")
		in.DocumentNumber = &n
	}
	in.DeleteDocument = f.flag("delete_document")
	if in.Document, err = formFile(c, "document"); err != nil {
		return in, err
	}
	return in, nil
}

// Package forms holds one typed struct per input form. Validate is pure
// and returns every failing field at once; a form that does not validate
// is never turned into a store call.
package forms

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/models"
)

// Form is implemented by every form.
type Form interface {
	FormName() string
	Validate() apierror.FieldErrors
}

// Check validates f and wraps any failures in a ValidationError.
func Check(f Form) error {
	if errs := f.Validate(); len(errs) > 0 {
		return &apierror.ValidationError{Form: f.FormName(), Fields: errs}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// TransactionKind decides the sign of the amount.
type TransactionKind string

const (
	Expense TransactionKind = "expense"
	Income  TransactionKind = "income"
)

// TransactionForm is the add/edit transaction input. Amount is the
// magnitude as typed; Kind supplies the sign.
type TransactionForm struct {
	ID                string
	Kind              TransactionKind
	Amount            string
	Currency          string
	Vendor            string
	Description       string
	TransactionDate   string
	Recurring         bool
	RecurrencePattern string
	CategoryID        string
}

// TransactionFormFrom prefills the form for editing t.
func TransactionFormFrom(t models.Transaction) TransactionForm {
	kind := Expense
	if t.IsIncome() {
		kind = Income
	}
	return TransactionForm{
		ID:                t.ID,
		Kind:              kind,
		Amount:            t.Amount.Abs().String(),
		Currency:          t.Currency,
		Vendor:            t.Vendor,
		Description:       t.Description,
		TransactionDate:   t.Date(),
		Recurring:         t.Recurring,
		RecurrencePattern: string(t.RecurrencePattern),
		CategoryID:        t.CategoryID,
	}
}

func (f TransactionForm) FormName() string { return "transaction" }

func (f TransactionForm) Validate() apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if blank(f.Vendor) {
		errs["vendor"] = "Vendor is required"
	}
	if blank(f.Description) {
		errs["description"] = "Description is required"
	}
	if blank(f.Amount) {
		errs["amount"] = "Amount is required"
	} else if d, err := decimal.NewFromString(strings.TrimSpace(f.Amount)); err != nil {
		errs["amount"] = "Amount must be a number"
	} else if d.IsZero() {
		errs["amount"] = "Amount is required"
	}
	if blank(f.TransactionDate) {
		errs["transactionDate"] = "Date is required"
	} else if _, err := time.Parse(models.DateLayout, strings.TrimSpace(f.TransactionDate)); err != nil {
		errs["transactionDate"] = "Date must be in YYYY-MM-DD format"
	}
	if f.Recurring && blank(f.RecurrencePattern) {
		errs["recurrencePattern"] = "Recurrence pattern is required for recurring transactions"
	} else if !blank(f.RecurrencePattern) {
		if _, err := models.ParseRecurrencePattern(f.RecurrencePattern); err != nil {
			errs["recurrencePattern"] = "Unknown recurrence pattern"
		}
	}
	if f.Kind != "" && f.Kind != Income && f.Kind != Expense {
		errs["kind"] = "Type must be income or expense"
	}
	return errs
}

// ToTransaction validates the form and builds the record to send.
func (f TransactionForm) ToTransaction() (models.Transaction, error) {
	if err := Check(f); err != nil {
		return models.Transaction{}, err
	}

	amount := decimal.RequireFromString(strings.TrimSpace(f.Amount)).Abs()
	if f.Kind != Income {
		amount = amount.Neg()
	}
	currency := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	t := models.Transaction{
		ID:              f.ID,
		Amount:          amount,
		Currency:        currency,
		Vendor:          strings.TrimSpace(f.Vendor),
		Description:     strings.TrimSpace(f.Description),
		TransactionDate: strings.TrimSpace(f.TransactionDate),
		Recurring:       f.Recurring,
		CategoryID:      f.CategoryID,
	}
	if f.Recurring {
		t.RecurrencePattern, _ = models.ParseRecurrencePattern(f.RecurrencePattern)
	}
	return t, nil
}

// CategoryForm is the add/edit category input.
type CategoryForm struct {
	ID               string
	Name             string
	Description      string
	ParentCategoryID string
	Color            string
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CategoryFormFrom prefills the form for editing c.
func CategoryFormFrom(c models.Category) CategoryForm {
	return CategoryForm{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		ParentCategoryID: c.ParentCategoryID,
		Color:            c.Color,
	}
}

func (f CategoryForm) FormName() string { return "category" }

func (f CategoryForm) Validate() apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if blank(f.Name) {
		errs["name"] = "Category name is required"
	}
	if f.ID != "" && f.ParentCategoryID == f.ID {
		errs["parentCategoryId"] = "A category cannot be its own parent"
	}
	if f.Color != "" && !colorPattern.MatchString(f.Color) {
		errs["color"] = "Color must be a hex value like #4caf50"
	}
	return errs
}

// ToCategory validates the form and builds the record to send.
func (f CategoryForm) ToCategory() (models.Category, error) {
	if err := Check(f); err != nil {
		return models.Category{}, err
	}
	return models.Category{
		ID:               f.ID,
		Name:             strings.TrimSpace(f.Name),
		Description:      strings.TrimSpace(f.Description),
		ParentCategoryID: f.ParentCategoryID,
		Color:            f.Color,
	}, nil
}

// EmailAccountForm is the connect-mailbox input.
type EmailAccountForm struct {
	Email       string
	Provider    string
	Description string
}

func (f EmailAccountForm) FormName() string { return "email account" }

func (f EmailAccountForm) Validate() apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if blank(f.Email) {
		errs["email"] = "Email is required"
	} else if !strings.Contains(f.Email, "@") {
		errs["email"] = "Please enter a valid email"
	}
	if blank(f.Provider) {
		errs["provider"] = "Provider is required"
	} else if _, err := models.ParseProvider(f.Provider); err != nil {
		errs["provider"] = "Unknown provider"
	}
	return errs
}

// ToInput validates the form and builds the connect request.
func (f EmailAccountForm) ToInput() (models.EmailAccountInput, error) {
	if err := Check(f); err != nil {
		return models.EmailAccountInput{}, err
	}
	provider, _ := models.ParseProvider(f.Provider)
	return models.EmailAccountInput{
		Email:       strings.TrimSpace(f.Email),
		Provider:    provider,
		Description: strings.TrimSpace(f.Description),
	}, nil
}

// emailPattern is the registration page's address check.
var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,4}$`)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// LoginForm is the credential input.
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) FormName() string { return "login" }

func (f LoginForm) Validate() apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if blank(f.Email) {
		errs["email"] = "Email is required"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// ToCredentials validates the form.
func (f LoginForm) ToCredentials() (models.Credentials, error) {
	if err := Check(f); err != nil {
		return models.Credentials{}, err
	}
	return models.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}, nil
}

// RegisterForm is the sign-up input.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (f RegisterForm) FormName() string { return "registration" }

func (f RegisterForm) Validate() apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if blank(f.Name) {
		errs["name"] = "Name is required"
	}
	if blank(f.Email) {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		errs["email"] = "Invalid email address"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	} else if len(f.Password) < MinPasswordLength {
		errs["password"] = "Password must be at least 8 characters"
	}
	if f.ConfirmPassword == "" {
		errs["confirmPassword"] = "Please confirm your password"
	} else if f.ConfirmPassword != f.Password {
		errs["confirmPassword"] = "Passwords do not match"
	}
	return errs
}

// ToRegistration validates the form.
func (f RegisterForm) ToRegistration() (models.Registration, error) {
	if err := Check(f); err != nil {
		return models.Registration{}, err
	}
	return models.Registration{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}, nil
}

package validation

import (
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// Transaction validates a new transaction.
//
// Required: categoryId, amount, description, type, paymentMethod, date.
// Optional fields are checked only for type, except that isRecurring=true
// requires a complete recurringPattern.
func Transaction(raw map[string]any) (core.TransactionInput, error) {
	r := newReader(raw)
	in := core.TransactionInput{
		CategoryID:    r.requiredString("categoryId", "Category is required"),
		Amount:        r.amount("amount", "Amount is required"),
		Description:   r.requiredString("description", "Description is required"),
		Type:          core.EntryType(r.requiredString("type", "Type is required")),
		PaymentMethod: r.requiredString("paymentMethod", "Payment method is required"),
		Date:          r.date("date", "Date is required"),
		Location:      r.optionalString("location"),
		ReceiptURL:    r.optionalString("receiptUrl"),
		Tags:          r.stringList("tags"),
	}
	if in.Type != "" && !in.Type.Valid() {
		r.errs.Add("type", "type must be one of income, expense")
	}

	in.IsRecurring, _ = r.optionalBool("isRecurring")
	if obj, ok := r.object("recurringPattern"); ok {
		in.RecurringPattern = recurringPattern(obj, r.errs)
	}
	if in.IsRecurring && !r.present("recurringPattern") {
		r.errs.Add("recurringPattern", "recurringPattern is required when isRecurring is true")
	}
	return in, r.err()
}

func recurringPattern(obj map[string]any, errs *core.ValidationError) *core.RecurringPattern {
	pr := &reader{raw: obj, errs: &core.ValidationError{}}
	p := &core.RecurringPattern{
		Interval: core.Period(pr.requiredString("interval", "")),
		EndDate:  pr.date("endDate", ""),
	}
	if p.Interval != "" && !p.Interval.Valid() {
		pr.errs.Add("interval", "interval must be one of daily, weekly, monthly")
	}
	if n, ok := pr.integer("occurrences"); ok {
		if n < 1 {
			pr.errs.Add("occurrences", "occurrences must be at least 1")
		}
		p.Occurrences = n
	} else if !pr.present("occurrences") {
		pr.errs.Add("occurrences", "occurrences is required")
	}
	if len(pr.errs.Fields) > 0 {
		for _, f := range pr.errs.Fields {
			errs.Add("recurringPattern."+f.Field, f.Message)
		}
		return nil
	}
	return p
}

package validation

import (
	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// systemManaged settings fields cannot be set by callers.
var systemManaged = []string{"id", "userId", "createdAt", "updatedAt"}

// SettingsUpdate validates a partial settings update. Absent keys are left
// nil; present keys must have the right type and an allowed value.
func SettingsUpdate(raw map[string]any) (core.SettingsUpdate, error) {
	r := newReader(raw)
	var u core.SettingsUpdate

	for _, key := range systemManaged {
		if _, ok := r.raw[key]; ok {
			r.errs.Add(key, key+" cannot be updated")
		}
	}

	if r.present("theme") {
		theme := core.Theme(r.optionalString("theme"))
		switch {
		case r.errs.Has("theme"):
			// wrong type, already reported
		case !theme.Valid():
			r.errs.Add("theme", "theme must be one of light, dark, auto")
		default:
			u.Theme = &theme
		}
	}
	if r.present("language") {
		lang := core.Language(r.optionalString("language"))
		switch {
		case r.errs.Has("language"):
			// wrong type, already reported
		case !lang.Valid():
			r.errs.Add("language", "language must be one of en, te")
		default:
			u.Language = &lang
		}
	}
	if r.present("currency") {
		currency := r.optionalString("currency")
		switch {
		case r.errs.Has("currency"):
			// wrong type, already reported
		case !isCurrencyCode(currency):
			r.errs.Add("currency", "currency must be a three-letter ISO 4217 code")
		default:
			u.Currency = &currency
		}
	}
	if r.present("pinHash") {
		hash := r.optionalString("pinHash")
		u.PINHash = &hash
	}

	toggles := []struct {
		key string
		dst **bool
	}{
		{"appLockEnabled", &u.AppLockEnabled},
		{"dataEncryption", &u.DataEncryption},
		{"budgetAlerts", &u.BudgetAlerts},
		{"goalMilestones", &u.GoalMilestones},
		{"dailySummary", &u.DailySummary},
		{"autoBackup", &u.AutoBackup},
		{"smartCategorization", &u.SmartCategorization},
		{"locationTracking", &u.LocationTracking},
	}
	for _, tg := range toggles {
		if v, ok := r.optionalBool(tg.key); ok {
			b := v
			*tg.dst = &b
		}
	}

	return u, r.err()
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

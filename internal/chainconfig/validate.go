package chainconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/rollover/internal/rollover"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("contract_code", isContractCode)

	// Report fields by their YAML names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks all required constraints.
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return err
	}

	// === Contracts ===
	codes := make(map[string]int, len(cfg.Contracts))
	expiries := make(map[string]int, len(cfg.Contracts))
	for i, ct := range cfg.Contracts {
		if j, dup := codes[ct.Code]; dup {
			return ValidationError{
				Field:   fmt.Sprintf("contracts[%d].code", i),
				Message: fmt.Sprintf("duplicates contracts[%d]", j),
			}
		}
		codes[ct.Code] = i

		if j, dup := expiries[ct.Expiry]; dup {
			return ValidationError{
				Field:   fmt.Sprintf("contracts[%d].expiry", i),
				Message: fmt.Sprintf("same expiry as contracts[%d] (%s)", j, cfg.Contracts[j].Code),
			}
		}
		expiries[ct.Expiry] = i
	}

	// === Horizon ===
	start, _ := time.Parse(dateLayout, cfg.Meta.StartDate)
	schedule, err := cfg.Schedule()
	if err != nil {
		return ValidationError{"contracts", err.Error()}
	}
	last := schedule.Sorted().Last()
	if start.After(last.Date) {
		return ValidationError{"meta.start_date", fmt.Sprintf("must not be after the last expiry %s", last.Date.Format(dateLayout))}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config, opts rollover.Options) []Warning {
	var warnings []Warning

	cal, err := cfg.BusinessCalendar()
	if err != nil {
		return warnings
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return warnings
	}

	if !schedule.IsSorted() {
		msg := "contracts are not listed in expiry order"
		if opts.Order != rollover.OrderSort {
			msg += "; order policy reject will fail the build"
		}
		warnings = append(warnings, Warning{Code: "UNSORTED_CONTRACTS", Message: msg})
	}

	if start, err := cfg.Start(); err == nil && !cal.IsBusinessDay(start) {
		warnings = append(warnings, Warning{
			Code:    "START_NOT_BUSINESS_DAY",
			Message: fmt.Sprintf("start %s rolls forward to %s", cfg.Meta.StartDate, cal.RollForward(start).Format(dateLayout)),
		})
	}

	for _, e := range schedule {
		if !cal.IsBusinessDay(e.Date) {
			warnings = append(warnings, Warning{
				Code:    "NON_BUSINESS_EXPIRY",
				Message: fmt.Sprintf("%s expires on a closed day %s", e.Contract, e.Date.Format(dateLayout)),
			})
		}
	}

	// 롤오버 윈도우가 이전 계약 보유 구간을 침범하는지
	sorted := schedule.Sorted()
	for i := 1; i < len(sorted)-1; i++ {
		windowStart := cal.StepBack(cal.StepBack(sorted[i].Date, 1), opts.Window)
		if windowStart.Before(sorted[i-1].Date) {
			warnings = append(warnings, Warning{
				Code: "WINDOW_OVERLAP",
				Message: fmt.Sprintf("%s window of %d days starts %s, before %s expires; overlap policy %s applies",
					sorted[i].Contract, opts.Window, windowStart.Format(dateLayout), sorted[i-1].Contract, opts.Overlap),
			})
		}
	}

	return warnings
}

// === Helper Functions ===

func fieldError(fe validator.FieldError) ValidationError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "min":
		msg = fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		msg = "must be YYYY-MM-DD"
	case "contract_code":
		msg = "must be 1-20 letters, digits, '.', '_' or '-'"
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return ValidationError{Field: field, Message: msg}
}

// isContractCode accepts exchange codes such as CLZ24, ES.H25 or brent-2024-06
func isContractCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) < 1 || len(code) > 20 {
		return false
	}
	for _, ch := range code {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		case ch == '.', ch == '_', ch == '-':
		default:
			return false
		}
	}
	return true
}

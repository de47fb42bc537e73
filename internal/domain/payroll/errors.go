package payroll

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrImmutablePeriod     = errors.New("payroll period is finalized")
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	ErrComputation         = errors.New("payroll computation failed")
	ErrExportNotReady      = errors.New("payroll period must be finalized before export")
	ErrPayslipNotAvailable = errors.New("payslip not yet available")
	ErrNoEntries           = errors.New("payroll period has no entries")
)

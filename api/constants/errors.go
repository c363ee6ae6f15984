package constants

import "fmt"

// ============================================================================
// PERIOD CLOSING ERRORS
// ============================================================================

const (
	ErrMonthClosed       = "The selected month is closed. Financial records can no longer be modified"
	ErrYearClosed        = "The fiscal year has already been closed for editing"
	ErrClosingCheck      = "Failed to check the closing status of the month"
	ErrInvalidMonth      = "yyyymm must be a six digit year-month, e.g. 202501"
	ErrInvalidCloseState = "status must be OPEN or CLOSED"
)

// ============================================================================
// MASTER DATA ERRORS
// ============================================================================

const (
	ErrProjectNotFound      = "Project not found"
	ErrVendorDuplicateBizNo = "A vendor with this business registration number already exists"
	ErrGLAccountDuplicate   = "A G/L account with this code already exists"
	ErrCostCenterDuplicate  = "A cost center with this code already exists"
	ErrBudgetCodeNotFound   = "Budget code not found"
	ErrBudgetCodeHasChilds  = "This code still has child codes. Delete or move the children first"
)

// ============================================================================
// TRANSFER & EXECUTION ERRORS
// ============================================================================

const (
	ErrInsufficientBalance = "The source project does not have enough planned budget left for this month"
	ErrSameProject         = "Source and target project must differ"
	ErrInvalidAmount       = "transfer_amount must be a positive number"
)

// ============================================================================
// SAP IMPORT / MAPPING ERRORS
// ============================================================================

const (
	ErrExcelOnly       = "Only spreadsheet files (.xlsx, .xls, .csv) can be uploaded"
	ErrEmptyWorkbook   = "The uploaded workbook has no data rows"
	ErrNoRawSelected   = "raw_ids must contain at least one staged line"
	ErrTargetProjEmpty = "target_proj_id is required"
)

// FmtUploadSummary renders the operator-facing summary line for an import.
func FmtUploadSummary(total, inserted, skipped int) string {
	return fmt.Sprintf("%d rows processed (new: %d, duplicates skipped: %d)", total, inserted, skipped)
}

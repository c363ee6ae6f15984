package config

const (
	DefaultTimeZone = "Asia/Seoul"

	// FallbackMonth is assigned to raw ledger lines whose posting date is
	// missing or too short to derive a YYYYMM from. Rows are never dropped
	// for an unparseable date; they land here and stay queryable.
	FallbackMonth = "999912"

	// Fiscal years the planning screens may address.
	MinManagementYear    = 2022
	PlanningHorizonYears = 2

	// Auto-Mapping Job Constants
	DefaultMappingSchedule = "0 19 * * *" // 7 PM daily, after SAP exports land
	MappingBatchSize       = 500
)

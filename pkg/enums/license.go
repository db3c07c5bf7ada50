package enums

import "slices"

// LicenseStatus is the lifecycle state stored in licenses.status.
type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusExpired   LicenseStatus = "expired"
)

var licenseStatuses = []LicenseStatus{
	LicenseStatusActive,
	LicenseStatusSuspended,
	LicenseStatusExpired,
}

func (l LicenseStatus) String() string { return string(l) }

func (l LicenseStatus) IsValid() bool { return slices.Contains(licenseStatuses, l) }

func ParseLicenseStatus(value string) (LicenseStatus, error) {
	return parse("license status", value, licenseStatuses)
}

// Plan is the tier a license was sold under. It is carried in site tokens and
// echoed to clients; quota comes from tokens_limit, not from the plan.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

var plans = []Plan{PlanFree, PlanStarter, PlanPro, PlanEnterprise}

func (p Plan) String() string { return string(p) }

func (p Plan) IsValid() bool { return slices.Contains(plans, p) }

func ParsePlan(value string) (Plan, error) {
	return parse("plan", value, plans)
}

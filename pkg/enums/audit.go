package enums

import "slices"

// AuditStatus records whether an audited request succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

var auditStatuses = []AuditStatus{AuditStatusSuccess, AuditStatusFailed}

func (a AuditStatus) IsValid() bool { return slices.Contains(auditStatuses, a) }

// AuditRequestType identifies which surface produced an audit entry.
type AuditRequestType string

const (
	AuditRequestValidate     AuditRequestType = "validate"
	AuditRequestAuthenticate AuditRequestType = "authenticate"
)

var auditRequestTypes = []AuditRequestType{AuditRequestValidate, AuditRequestAuthenticate}

func (a AuditRequestType) IsValid() bool { return slices.Contains(auditRequestTypes, a) }

func ParseAuditStatus(value string) (AuditStatus, error) {
	return parse("audit status", value, auditStatuses)
}

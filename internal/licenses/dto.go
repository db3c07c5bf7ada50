package licenses

import (
	"encoding/json"

	"github.com/angelmondragon/licensegate/pkg/enums"
	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
)

// ResetDateLayout is the date-only wire format of reset_date.
const ResetDateLayout = "2006-01-02"

// ValidationRequest is the body accepted by the validate endpoint.
type ValidationRequest struct {
	LicenseKey string `json:"license_key" validate:"required"`
	SiteURL    string `json:"site_url" validate:"required"`
}

// Grant is the success arm of a validation.
type Grant struct {
	UserID          string     `json:"user_id"`
	SiteToken       string     `json:"site_token"`
	Plan            enums.Plan `json:"plan"`
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	ResetDate       string     `json:"reset_date"`
}

// ValidationResponse holds exactly one of Grant or Err.
type ValidationResponse struct {
	Grant *Grant
	Err   *pkgerrors.Error
}

func granted(g Grant) *ValidationResponse {
	return &ValidationResponse{Grant: &g}
}

func rejected(err *pkgerrors.Error) *ValidationResponse {
	return &ValidationResponse{Err: err}
}

// Succeeded reports whether the response carries a grant.
func (r *ValidationResponse) Succeeded() bool {
	return r != nil && r.Err == nil && r.Grant != nil
}

// Code returns the failure code, or "" on success.
func (r *ValidationResponse) Code() pkgerrors.Code {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Code()
}

type successBody struct {
	Success bool `json:"success"`
	Grant
}

type failureBody struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Code    pkgerrors.Code `json:"code"`
}

// MarshalJSON renders the flat success or failure body. Failures never carry a token.
func (r ValidationResponse) MarshalJSON() ([]byte, error) {
	if r.Err != nil || r.Grant == nil {
		failure := failureBody{Code: pkgerrors.CodeInternal, Error: "internal server error"}
		if r.Err != nil {
			failure.Code = r.Err.Code()
			failure.Error = r.Err.Message()
		}
		return json.Marshal(failure)
	}
	return json.Marshal(successBody{Success: true, Grant: *r.Grant})
}

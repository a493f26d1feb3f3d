/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  domain types. Day quantities and money cross the wire as strings so
  clients never touch binary floats.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-ledger/leave"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type CreateEmployeeRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	AppointmentDate  string `json:"appointment_date"`
	EmploymentStatus string `json:"employment_status,omitempty"`
	MonthlySalary    string `json:"monthly_salary"`
	SeparationDate   string `json:"separation_date,omitempty"`
}

type AddServiceRecordRequest struct {
	MonthlySalary string `json:"monthly_salary"`
	EffectiveFrom string `json:"effective_from"`
}

type CreateApplicationRequest struct {
	EmployeeID    string `json:"employee_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaysRequested string `json:"days_requested"`
	Reason        string `json:"reason,omitempty"`
}

type ReviewRequest struct {
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes,omitempty"`
}

type SaveLeaveTypeRequest struct {
	ID                  string `json:"id,omitempty"`
	Code                string `json:"code"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	MaxDaysPerYear      string `json:"max_days_per_year,omitempty"` // empty = unbounded
	IsMonetizable       bool   `json:"is_monetizable"`
	RequiresMedicalCert bool   `json:"requires_medical_certificate"`
}

type MonetizeRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
	Year        int    `json:"year"`
	Days        string `json:"days"`
	Reference   string `json:"reference,omitempty"`
}

type InitializeYearRequest struct {
	Year int `json:"year"`
}

type MonthlyAccrualRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type CarryForwardRequest struct {
	FromYear int `json:"from_year"`
	ToYear   int `json:"to_year"`
}

type BenefitRequest struct {
	ClaimDate      string `json:"claim_date"`
	SeparationDate string `json:"separation_date"`
}

type PayClaimRequest struct {
	Payer     string `json:"payer"`
	Reference string `json:"reference,omitempty"`
}

type PutSettingRequest struct {
	Value string `json:"value"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type BalanceDTO struct {
	EmployeeID     string `json:"employee_id"`
	LeaveTypeID    string `json:"leave_type_id"`
	Year           int    `json:"year"`
	Earned         string `json:"earned_days"`
	Used           string `json:"used_days"`
	Monetized      string `json:"monetized_days"`
	CarriedForward string `json:"carried_forward"`
	Current        string `json:"current_balance"`
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:     string(b.EmployeeID),
		LeaveTypeID:    string(b.LeaveTypeID),
		Year:           b.Year,
		Earned:         b.Earned.StringFixed(2),
		Used:           b.Used.StringFixed(2),
		Monetized:      b.Monetized.StringFixed(2),
		CarriedForward: b.CarriedForward.StringFixed(2),
		Current:        b.Current.StringFixed(2),
	}
}

type ApplicationDTO struct {
	ID            string   `json:"id"`
	Number        string   `json:"application_number"`
	EmployeeID    string   `json:"employee_id"`
	LeaveTypeID   string   `json:"leave_type_id"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	DaysRequested string   `json:"days_requested"`
	Reason        string   `json:"reason,omitempty"`
	Status        string   `json:"status"`
	ReviewedBy    string   `json:"reviewed_by,omitempty"`
	ReviewedAt    string   `json:"reviewed_at,omitempty"`
	ReviewNotes   string   `json:"review_notes,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

func toApplicationDTO(a *leave.Application, warnings []string) ApplicationDTO {
	dto := ApplicationDTO{
		ID:            a.ID,
		Number:        a.Number,
		EmployeeID:    string(a.EmployeeID),
		LeaveTypeID:   string(a.LeaveTypeID),
		StartDate:     a.StartDate.String(),
		EndDate:       a.EndDate.String(),
		DaysRequested: a.DaysRequested.StringFixed(2),
		Reason:        a.Reason,
		Status:        string(a.Status),
		ReviewedBy:    a.ReviewedBy,
		ReviewNotes:   a.ReviewNotes,
		Warnings:      warnings,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
	if a.ReviewedAt != nil {
		dto.ReviewedAt = a.ReviewedAt.Format(time.RFC3339)
	}
	return dto
}

type LeaveTypeDTO struct {
	ID                  string `json:"id"`
	Code                string `json:"code"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	MaxDaysPerYear      string `json:"max_days_per_year,omitempty"`
	IsMonetizable       bool   `json:"is_monetizable"`
	RequiresMedicalCert bool   `json:"requires_medical_certificate"`
}

func toLeaveTypeDTO(lt leave.LeaveType) LeaveTypeDTO {
	dto := LeaveTypeDTO{
		ID:                  string(lt.ID),
		Code:                lt.Code,
		Name:                lt.Name,
		Description:         lt.Description,
		IsMonetizable:       lt.IsMonetizable,
		RequiresMedicalCert: lt.RequiresMedicalCert,
	}
	if lt.MaxDaysPerYear != nil {
		dto.MaxDaysPerYear = lt.MaxDaysPerYear.String()
	}
	return dto
}

type MonetizationDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	LeaveTypeID string `json:"leave_type_id"`
	Year        int    `json:"year"`
	Days        string `json:"days"`
	Reference   string `json:"reference,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toMonetizationDTO(rec leave.MonetizationRecord) MonetizationDTO {
	return MonetizationDTO{
		ID:          rec.ID,
		EmployeeID:  string(rec.EmployeeID),
		LeaveTypeID: string(rec.LeaveTypeID),
		Year:        rec.Year,
		Days:        rec.Days.StringFixed(2),
		Reference:   rec.Reference,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

type BenefitDTO struct {
	EmployeeID     string `json:"employee_id"`
	ClaimDate      string `json:"claim_date"`
	SeparationDate string `json:"separation_date"`
	TotalCredits   string `json:"total_credits"`
	HighestSalary  string `json:"highest_salary"`
	ConstantFactor string `json:"constant_factor"`
	Amount         string `json:"amount"`
}

func toBenefitDTO(b *leave.TerminalBenefit) BenefitDTO {
	return BenefitDTO{
		EmployeeID:     string(b.EmployeeID),
		ClaimDate:      b.ClaimDate.String(),
		SeparationDate: b.SeparationDate.String(),
		TotalCredits:   b.TotalCredits.StringFixed(2),
		HighestSalary:  b.HighestSalary.StringFixed(2),
		ConstantFactor: b.ConstantFactor.String(),
		Amount:         b.Amount.StringFixed(2),
	}
}

type ClaimDTO struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	ClaimDate      string `json:"claim_date"`
	SeparationDate string `json:"separation_date"`
	TotalCredits   string `json:"total_credits"`
	HighestSalary  string `json:"highest_salary"`
	ConstantFactor string `json:"constant_factor"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
	PaidBy         string `json:"paid_by,omitempty"`
	PaidAt         string `json:"paid_at,omitempty"`
	PaymentRef     string `json:"payment_reference,omitempty"`
}

func toClaimDTO(c *leave.TLBClaim) ClaimDTO {
	dto := ClaimDTO{
		ID:             c.ID,
		EmployeeID:     string(c.EmployeeID),
		ClaimDate:      c.ClaimDate.String(),
		SeparationDate: c.SeparationDate.String(),
		TotalCredits:   c.TotalCredits.StringFixed(2),
		HighestSalary:  c.HighestSalary.StringFixed(2),
		ConstantFactor: c.ConstantFactor.String(),
		Amount:         c.Amount.StringFixed(2),
		Status:         string(c.Status),
		PaidBy:         c.PaidBy,
		PaymentRef:     c.PaymentRef,
	}
	if c.PaidAt != nil {
		dto.PaidAt = c.PaidAt.Format(time.RFC3339)
	}
	return dto
}

type EmployeeDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	AppointmentDate  string `json:"appointment_date"`
	EmploymentStatus string `json:"employment_status"`
	MonthlySalary    string `json:"monthly_salary"`
	SeparationDate   string `json:"separation_date,omitempty"`
}

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:               string(e.ID),
		Name:             e.Name,
		Email:            e.Email,
		AppointmentDate:  e.AppointmentDate.String(),
		EmploymentStatus: e.EmploymentStatus,
		MonthlySalary:    e.MonthlySalary.StringFixed(2),
	}
	if e.SeparationDate != nil {
		dto.SeparationDate = e.SeparationDate.String()
	}
	return dto
}

type errorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

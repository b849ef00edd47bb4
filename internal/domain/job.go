package domain

import (
	"database/sql"
	"time"
)

// Job status values shown in the default listing. Anything else (e.g.
// "Delivered") only appears when searching or filtering by date.
const (
	StatusInProduction     = "In Production"
	StatusReadyForDelivery = "Ready For Delivery"
	StatusInTransit        = "In Transit To Practice"
)

// exportDateLayout is the wire format consumed by existing clients of the
// job export mapping. Day first.
const exportDateLayout = "02/01/2006"

// Job is a lab work order (jobs table).
//
// PracticeName and DoctorName are free-text snapshots of the practice and
// doctor names taken when the job is created or edited. There is no foreign
// key on purpose: renaming a practice must not rewrite the history on
// existing jobs.
type Job struct {
	ID            int64        `db:"id"`
	JobType       string       `db:"job_type"`
	PracticeName  string       `db:"practice_name"`
	DoctorName    string       `db:"doctor_name"`
	PatientName   string       `db:"patient_name"`
	LabSlipNumber string       `db:"lab_slip_number"`
	JobStatus     string       `db:"job_status"`
	DueDate       sql.NullTime `db:"due_date"`
	Shade         string       `db:"shade"`
	InvoiceNumber string       `db:"invoice_number"`
	DeliveryInfo  string       `db:"delivery_info"`
	Comments      string       `db:"comments"`
	CreatedDate   time.Time    `db:"created_date"` // set once at creation
	UpdatedDate   time.Time    `db:"updated_date"` // refreshed on every mutation
}

// ToExport renders the job as the flat mapping existing clients consume.
// Dates are DD/MM/YYYY strings; a missing due date exports as nil.
func (j Job) ToExport() map[string]any {
	m := map[string]any{
		"id":              j.ID,
		"job_type":        j.JobType,
		"practice_name":   j.PracticeName,
		"doctor_name":     j.DoctorName,
		"patient_name":    j.PatientName,
		"lab_slip_number": j.LabSlipNumber,
		"job_status":      j.JobStatus,
		"shade":           j.Shade,
		"invoice_number":  j.InvoiceNumber,
		"delivery_info":   j.DeliveryInfo,
		"comments":        j.Comments,
		"created_date":    j.CreatedDate.Format(exportDateLayout),
		"updated_date":    j.UpdatedDate.Format(exportDateLayout),
	}
	if j.DueDate.Valid {
		m["due_date"] = j.DueDate.Time.Format(exportDateLayout)
	} else {
		m["due_date"] = nil
	}
	return m
}

package models

import (
	"strings"
	"time"
)

// Scheme identifies the certification track a registration belongs to.
// Legacy rows imported from the old register may carry both tracks in a
// single row (SchemeBoth); the notification engine never sees that shape,
// it only operates on per-scheme views (see SchemeViews).
type Scheme string

const (
	SchemeA    Scheme = "SCHEME_A"
	SchemeB    Scheme = "SCHEME_B"
	SchemeBoth Scheme = "both"
)

func IsValidScheme(s Scheme) bool {
	switch s {
	case SchemeA, SchemeB, SchemeBoth:
		return true
	}
	return false
}

type CertStatus string

const (
	StatusActive       CertStatus = "active"
	StatusUnderProcess CertStatus = "under_process"
	StatusExpired      CertStatus = "expired"
	StatusPending      CertStatus = "pending"
)

func IsValidCertStatus(s CertStatus) bool {
	switch s {
	case StatusActive, StatusUnderProcess, StatusExpired, StatusPending:
		return true
	}
	return false
}

// SchemeRecord holds the registration fields that exist once per scheme on a
// certification row.
type SchemeRecord struct {
	RegistrationNumber string     `json:"registration_number"`
	Status             CertStatus `json:"status"`
	ValidFrom          *time.Time `json:"valid_from,omitempty"`
	ValidTo            *time.Time `json:"valid_to,omitempty"`
}

// Populated reports whether the record carries anything worth tracking.
func (r SchemeRecord) Populated() bool {
	return strings.TrimSpace(r.RegistrationNumber) != "" || r.ValidTo != nil || r.ValidFrom != nil
}

// Certification is one stored register row for one plant. A row labelled
// SchemeBoth is a legacy combined row holding both scheme sub-records.
type Certification struct {
	ID            string       `json:"id"`
	GroupNumber   string       `json:"group_number"`
	PlantName     string       `json:"plant_name"`
	Address       string       `json:"address"`
	Scheme        Scheme       `json:"scheme"`
	SchemeA       SchemeRecord `json:"scheme_a"`
	SchemeB       SchemeRecord `json:"scheme_b"`
	ModelList     string       `json:"model_list"`
	StandardRef   string       `json:"standard_ref"`
	RenewalStatus string       `json:"renewal_status"`
	AlarmNote     string       `json:"alarm_note"`
	ActionNote    string       `json:"action_note"`

	AttachmentName *string   `json:"attachment_name,omitempty"`
	AttachmentType *string   `json:"-"`
	Attachment     []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SchemeCertification is the single-scheme unit the classifier and the
// dispatcher operate on: one registration, one validity window.
type SchemeCertification struct {
	CertificationID string
	Scheme          Scheme
	GroupNumber     string
	PlantName       string
	Address         string
	Record          SchemeRecord
	ModelList       string
	StandardRef     string
	RenewalStatus   string
	AlarmNote       string
	ActionNote      string
	AttachmentName  *string
}

// SchemeViews expands a stored row into its per-scheme views. A SchemeBoth
// row yields two views; the caller decides what to do with unpopulated ones.
func (c Certification) SchemeViews() []SchemeCertification {
	var views []SchemeCertification
	if c.Scheme == SchemeA || c.Scheme == SchemeBoth {
		views = append(views, c.schemeView(SchemeA, c.SchemeA))
	}
	if c.Scheme == SchemeB || c.Scheme == SchemeBoth {
		views = append(views, c.schemeView(SchemeB, c.SchemeB))
	}
	return views
}

func (c Certification) schemeView(scheme Scheme, rec SchemeRecord) SchemeCertification {
	return SchemeCertification{
		CertificationID: c.ID,
		Scheme:          scheme,
		GroupNumber:     c.GroupNumber,
		PlantName:       c.PlantName,
		Address:         c.Address,
		Record:          rec,
		ModelList:       c.ModelList,
		StandardRef:     c.StandardRef,
		RenewalStatus:   c.RenewalStatus,
		AlarmNote:       c.AlarmNote,
		ActionNote:      c.ActionNote,
		AttachmentName:  c.AttachmentName,
	}
}

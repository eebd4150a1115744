// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ostaff-go/internal/util"
)

// User-visible validation messages.
const (
	MsgRequired     = "This field is required."
	MsgInvalidEmail = "Please enter a valid email address."
	MsgConsent      = "You must accept the privacy policy before sending."
	MsgCVRequired   = "Please attach your CV."
)

// Field name for the consent checkbox in every form.
const FieldConsent = "gdpr"

func required(ve *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, MsgRequired)
	}
}

func requiredEmail(ve *ValidationError, field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		ve.Add(field, MsgRequired)
		return
	}
	if !isValidEmail(value) {
		ve.Add(field, MsgInvalidEmail)
	}
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject "Name <addr>" forms, only a bare address is accepted.
	return addr.Address == email && strings.Contains(addr.Address, "@")
}

func consentStamp(given bool, now time.Time) *time.Time {
	if !given {
		return nil
	}
	t := now
	return &t
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// CandidateForm is the candidate contact form.
type CandidateForm struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Consent bool
}

// Validate checks required fields and consent.
func (f CandidateForm) Validate() error {
	ve := NewValidationError()
	required(ve, "name", f.Name)
	requiredEmail(ve, "email", f.Email)
	required(ve, "message", f.Message)
	if !f.Consent {
		ve.Add(FieldConsent, MsgConsent)
	}
	return ve.OrNil()
}

// ToMessage builds the inbox row for a validated form.
func (f CandidateForm) ToMessage(now time.Time) Message {
	return Message{
		FromType:        FromCandidate,
		FullName:        strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Phone:           util.OptionalString(f.Phone),
		Subject:         strings.TrimSpace(f.Subject),
		Body:            strings.TrimSpace(f.Message),
		Status:          MessageNew,
		GDPRConsent:     f.Consent,
		GDPRConsentedAt: consentStamp(f.Consent, now),
	}
}

// CompanyForm is the company contact form. NameTitle is the contact
// person's name and title.
type CompanyForm struct {
	CompanyName string
	NameTitle   string
	Email       string
	Phone       string
	Subject     string
	Message     string
	Consent     bool
}

// Validate checks required fields and consent.
func (f CompanyForm) Validate() error {
	ve := NewValidationError()
	required(ve, "company_name", f.CompanyName)
	required(ve, "name_title", f.NameTitle)
	requiredEmail(ve, "email", f.Email)
	required(ve, "subject", f.Subject)
	required(ve, "message", f.Message)
	if !f.Consent {
		ve.Add(FieldConsent, MsgConsent)
	}
	return ve.OrNil()
}

// ToMessage builds the inbox row for a validated form.
func (f CompanyForm) ToMessage(now time.Time) Message {
	return Message{
		FromType:        FromCompany,
		FullName:        strings.TrimSpace(f.NameTitle),
		CompanyName:     util.OptionalString(f.CompanyName),
		Email:           strings.TrimSpace(f.Email),
		Phone:           util.OptionalString(f.Phone),
		Subject:         strings.TrimSpace(f.Subject),
		Body:            strings.TrimSpace(f.Message),
		Status:          MessageNew,
		GDPRConsent:     f.Consent,
		GDPRConsentedAt: consentStamp(f.Consent, now),
	}
}

// StaffingRequestForm is a company's request for staff. NeedType is stored
// as the message subject; Headcount and StartDate are appended to the body.
type StaffingRequestForm struct {
	FirstName string
	LastName  string
	Company   string
	Email     string
	Phone     string
	NeedType  string
	Headcount string
	StartDate string
	Message   string
	Consent   bool
}

// Validate checks required fields and consent.
func (f StaffingRequestForm) Validate() error {
	ve := NewValidationError()
	required(ve, "first_name", f.FirstName)
	required(ve, "last_name", f.LastName)
	required(ve, "company", f.Company)
	requiredEmail(ve, "email", f.Email)
	required(ve, "need_type", f.NeedType)
	required(ve, "message", f.Message)
	if h := strings.TrimSpace(f.Headcount); h != "" {
		if n, err := strconv.Atoi(h); err != nil || n <= 0 {
			ve.Add("headcount", "Please enter a positive number.")
		}
	}
	if !f.Consent {
		ve.Add(FieldConsent, MsgConsent)
	}
	return ve.OrNil()
}

// ToMessage builds the inbox row for a validated form.
func (f StaffingRequestForm) ToMessage(now time.Time) Message {
	body := strings.TrimSpace(f.Message)
	var extra []string
	if h := strings.TrimSpace(f.Headcount); h != "" {
		extra = append(extra, "Headcount: "+h)
	}
	if d := strings.TrimSpace(f.StartDate); d != "" {
		extra = append(extra, "Start date: "+d)
	}
	if len(extra) > 0 {
		body += "\n\n" + strings.Join(extra, "\n")
	}

	return Message{
		FromType:        FromStaffingRequest,
		FullName:        joinName(f.FirstName, f.LastName),
		CompanyName:     util.OptionalString(f.Company),
		Email:           strings.TrimSpace(f.Email),
		Phone:           util.OptionalString(f.Phone),
		Subject:         strings.TrimSpace(f.NeedType),
		Body:            body,
		Status:          MessageNew,
		GDPRConsent:     f.Consent,
		GDPRConsentedAt: consentStamp(f.Consent, now),
	}
}

// RelayContact is the JSON body accepted by the contact relay endpoint.
// Consent is optional here; the timestamp is only stamped when given.
type RelayContact struct {
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	GDPR        bool   `json:"gdpr"`
}

// Validate checks the required relay fields.
func (f RelayContact) Validate() error {
	ve := NewValidationError()
	required(ve, "companyName", f.CompanyName)
	required(ve, "contactName", f.ContactName)
	requiredEmail(ve, "email", f.Email)
	required(ve, "subject", f.Subject)
	required(ve, "message", f.Message)
	return ve.OrNil()
}

// ToMessage builds a company inbox row from the relay body.
func (f RelayContact) ToMessage(now time.Time) Message {
	return Message{
		FromType:        FromCompany,
		FullName:        strings.TrimSpace(f.ContactName),
		CompanyName:     util.OptionalString(f.CompanyName),
		Email:           strings.TrimSpace(f.Email),
		Phone:           util.OptionalString(f.Phone),
		Subject:         strings.TrimSpace(f.Subject),
		Body:            strings.TrimSpace(f.Message),
		Status:          MessageNew,
		GDPRConsent:     f.GDPR,
		GDPRConsentedAt: consentStamp(f.GDPR, now),
	}
}

// ApplicationForm is the job application form. CV is mandatory; Other is an
// optional second document.
type ApplicationForm struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	City        string
	RoleApplied string
	CoverLetter string
	Consent     bool
	CV          *Attachment
	Other       *Attachment
}

// Validate checks required fields, the CV attachment and consent. File
// sizes are checked separately, after the row is inserted.
func (f ApplicationForm) Validate() error {
	ve := NewValidationError()
	required(ve, "first_name", f.FirstName)
	required(ve, "last_name", f.LastName)
	requiredEmail(ve, "email", f.Email)
	required(ve, "phone", f.Phone)
	if f.CV == nil || f.CV.Size <= 0 {
		ve.Add("cv", MsgCVRequired)
	}
	if !f.Consent {
		ve.Add(FieldConsent, MsgConsent)
	}
	return ve.OrNil()
}

// Application builds the application row, without file references.
func (f ApplicationForm) Application(now time.Time) Application {
	return Application{
		FirstName:       strings.TrimSpace(f.FirstName),
		LastName:        strings.TrimSpace(f.LastName),
		FullName:        joinName(f.FirstName, f.LastName),
		Email:           strings.TrimSpace(f.Email),
		Phone:           strings.TrimSpace(f.Phone),
		City:            util.OptionalString(f.City),
		RoleApplied:     util.OptionalString(f.RoleApplied),
		CoverLetter:     util.OptionalString(f.CoverLetter),
		Status:          ApplicationNew,
		GDPRConsent:     f.Consent,
		GDPRConsentedAt: consentStamp(f.Consent, now),
	}
}

// Accepted layouts for job dates, from date inputs and datetime-local inputs.
var jobDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseJobDate parses a date entered in the job editor.
func ParseJobDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range jobDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// JobForm is the admin job editor. A blank Slug is derived from Title.
type JobForm struct {
	Title          string
	Slug           string
	Location       string
	EmploymentType string
	DescriptionMD  string
	SalaryMin      string
	SalaryMax      string
	Published      bool
	PostedAt       string
	ExpiresAt      string
}

// Validate checks title, dates, salary range and the slug source.
func (f JobForm) Validate() error {
	ve := NewValidationError()
	required(ve, "title", f.Title)
	required(ve, "posted_at", f.PostedAt)

	if !ve.Has("posted_at") {
		if _, err := ParseJobDate(f.PostedAt); err != nil {
			ve.Add("posted_at", "Please enter a valid date.")
		}
	}
	if strings.TrimSpace(f.ExpiresAt) != "" {
		if _, err := ParseJobDate(f.ExpiresAt); err != nil {
			ve.Add("expires_at", "Please enter a valid date.")
		}
	}

	minSalary, minErr := parseOptionalFloat(f.SalaryMin)
	if minErr != nil {
		ve.Add("salary_min", "Please enter a number.")
	}
	maxSalary, maxErr := parseOptionalFloat(f.SalaryMax)
	if maxErr != nil {
		ve.Add("salary_max", "Please enter a number.")
	}
	if minSalary != nil && maxSalary != nil && *minSalary > *maxSalary {
		ve.Add("salary_max", "Maximum salary must not be below the minimum.")
	}

	if !ve.Has("title") && f.ResolvedSlug() == "" {
		ve.Add("slug", "A slug could not be derived; please enter one.")
	}
	return ve.OrNil()
}

// ResolvedSlug returns the slug that will be written: the given slug
// normalised, or one derived from the title when blank.
func (f JobForm) ResolvedSlug() string {
	if s := strings.TrimSpace(f.Slug); s != "" {
		return util.Slugify(s)
	}
	return util.Slugify(f.Title)
}

// Job builds the job row for a validated form.
func (f JobForm) Job() Job {
	postedAt, _ := ParseJobDate(f.PostedAt)
	job := Job{
		Title:          strings.TrimSpace(f.Title),
		Slug:           f.ResolvedSlug(),
		Location:       util.OptionalString(f.Location),
		EmploymentType: util.OptionalString(f.EmploymentType),
		DescriptionMD:  util.OptionalString(f.DescriptionMD),
		Published:      f.Published,
		PostedAt:       postedAt,
	}
	job.SalaryMin, _ = parseOptionalFloat(f.SalaryMin)
	job.SalaryMax, _ = parseOptionalFloat(f.SalaryMax)
	if strings.TrimSpace(f.ExpiresAt) != "" {
		if t, err := ParseJobDate(f.ExpiresAt); err == nil {
			job.ExpiresAt = &t
		}
	}
	return job
}

// JobFormFrom fills the editor from an existing job.
func JobFormFrom(j Job) JobForm {
	f := JobForm{
		Title:          j.Title,
		Slug:           j.Slug,
		Location:       util.StringValue(j.Location),
		EmploymentType: util.StringValue(j.EmploymentType),
		DescriptionMD:  util.StringValue(j.DescriptionMD),
		Published:      j.Published,
		PostedAt:       j.PostedAt.UTC().Format("2006-01-02T15:04"),
	}
	if j.SalaryMin != nil {
		f.SalaryMin = strconv.FormatFloat(*j.SalaryMin, 'f', -1, 64)
	}
	if j.SalaryMax != nil {
		f.SalaryMax = strconv.FormatFloat(*j.SalaryMax, 'f', -1, 64)
	}
	if j.ExpiresAt != nil {
		f.ExpiresAt = j.ExpiresAt.UTC().Format("2006-01-02T15:04")
	}
	return f
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// StaffingNeedTypes lists the choices offered for a staffing request.
func StaffingNeedTypes() []string {
	return []string{
		"Temporary staffing",
		"Permanent placement",
		"Project staffing",
		"Other",
	}
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string `gorm:"not null" json:"-"`
	IsActive       bool   `gorm:"not null" json:"is_active"`
}

// Patient is the aggregate root. Kids, CoreIssues, Sessions and TrackedIssues
// are owned exclusively and go away with the patient.
type Patient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName    string `gorm:"index;not null" json:"full_name"`
	PhoneNumber string `gorm:"index;not null" json:"phone_number"`
	Age         *int   `json:"age"`
	Place       string `json:"place"`
	FatherName  string `json:"father_name"`

	SchoolClassStudied  string `json:"school_class_studied"`
	MadrasaClassStudied string `json:"madrasa_class_studied"`

	IsMarried   bool   `gorm:"not null;default:false" json:"is_married"`
	HusbandName string `json:"husband_name"`
	HusbandJob  string `json:"husband_job"`
	KidsCount   *int   `json:"kids_count"`
	IsWorking   bool   `gorm:"not null;default:false" json:"is_working"`

	HasSiblings        bool `gorm:"not null;default:false" json:"has_siblings"`
	SiblingsHaveIssues bool `gorm:"not null;default:false" json:"siblings_have_issues"`

	CoreReason    string `json:"core_reason"`
	WhenItStarted string `json:"when_it_started"`
	Severity      string `json:"severity"`

	PreviouslySoughtHelp      datatypes.JSONSlice[string] `json:"previously_sought_help"`
	PreviouslySoughtHelpOther string                      `json:"previously_sought_help_other"`

	MedicineStatus      string `json:"medicine_status"`
	OtherMedications    string `json:"other_medications"`
	OtherDiseases       string `json:"other_diseases"`
	IsGenetic           bool   `gorm:"not null;default:false" json:"is_genetic"`
	GeneticRelativeName string `json:"genetic_relative_name"`

	Kids          []Kid          `gorm:"constraint:OnDelete:CASCADE" json:"kids"`
	CoreIssues    *CoreIssues    `gorm:"constraint:OnDelete:CASCADE" json:"core_issues"`
	Sessions      []Session      `gorm:"constraint:OnDelete:CASCADE" json:"sessions"`
	TrackedIssues []TrackedIssue `gorm:"constraint:OnDelete:CASCADE" json:"tracked_issues"`
}

type Kid struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Sex string `json:"sex"`
	Age int    `json:"age"`

	PatientID uint `gorm:"index;not null" json:"patient_id"`
}

// CoreIssues holds the belief/ritual related flags; at most one per patient.
type CoreIssues struct {
	ID uint `gorm:"primaryKey" json:"id"`

	IsAboutBelief  bool                        `gorm:"not null;default:false" json:"is_about_belief"`
	NiyyathRelated datatypes.JSONSlice[string] `json:"niyyath_related"`
	WuduTime       string                      `json:"wudu_time"`
	NamazTime      string                      `json:"namaz_time"`
	NajasRelated   datatypes.JSONSlice[string] `json:"najas_related"`

	DogRelated         bool `gorm:"not null;default:false" json:"dog_related"`
	PigRelated         bool `gorm:"not null;default:false" json:"pig_related"`
	OverSoaping        bool `gorm:"not null;default:false" json:"over_soaping"`
	FearOfDeath        bool `gorm:"not null;default:false" json:"fear_of_death"`
	FearOfDisease      bool `gorm:"not null;default:false" json:"fear_of_disease"`
	DoorLockingRelated bool `gorm:"not null;default:false" json:"door_locking_related"`

	OtherIssues string `json:"other_issues"`

	PatientID uint `gorm:"uniqueIndex;not null" json:"patient_id"`
}

// DefaultCoreIssues returns the record seeded for a new patient.
func DefaultCoreIssues(patientID uint) CoreIssues {
	return CoreIssues{
		PatientID:      patientID,
		NiyyathRelated: datatypes.JSONSlice[string]{},
		NajasRelated:   datatypes.JSONSlice[string]{},
	}
}

// Session is one dated visit log.
type Session struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `json:"title"`
	Date  Date   `gorm:"column:visit_date;type:date;index" json:"date"`
	Log   string `json:"log"`

	PatientID uint `gorm:"index;not null" json:"patient_id"`
}

type TrackedIssue struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Name               string `json:"name"`
	ProgressPercentage int    `gorm:"not null;default:0" json:"progress_percentage"`

	PatientID uint `gorm:"index;not null" json:"patient_id"`
}

// Status: "Scheduled", "Completed", "Canceled"
type ScheduleEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title  string    `gorm:"not null" json:"title"`
	Time   time.Time `gorm:"column:starts_at;index" json:"time"`
	Status string    `gorm:"not null;default:Scheduled" json:"status"` // Scheduled | Completed | Canceled
}

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCanceled  = "Canceled"
)

// ValidStatus reports whether s is one of the schedule statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// All returns every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Patient{},
		&Kid{},
		&CoreIssues{},
		&Session{},
		&TrackedIssue{},
		&ScheduleEvent{},
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicxz/backend/internal/models"
)

// Patients owns the patient aggregate: the patient row plus its kids,
// core issues, sessions and tracked issues.
type Patients struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPatients(gdb *gorm.DB) *Patients {
	return &Patients{db: gdb, now: time.Now}
}

type NewKid struct {
	Sex string `json:"sex"`
	Age int    `json:"age"`
}

// Create persists a patient, its kids and a default CoreIssues record in one
// transaction and returns the loaded aggregate.
func (s *Patients) Create(ctx context.Context, in Patch) (*models.Patient, error) {
	p := models.Patient{PreviouslySoughtHelp: datatypes.JSONSlice[string]{}}
	if _, err := patientFields.apply(&p, in); err != nil {
		return nil, err
	}
	if p.FullName == "" {
		return nil, invalid("full_name is required")
	}
	if p.PhoneNumber == "" {
		return nil, invalid("phone_number is required")
	}

	var kids []NewKid
	if raw, ok := in["kids"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &kids); err != nil {
			return nil, invalid("field kids: %v", err)
		}
	}

	var out *models.Patient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		for _, k := range kids {
			kid := models.Kid{Sex: k.Sex, Age: k.Age, PatientID: p.ID}
			if err := tx.Create(&kid).Error; err != nil {
				return err
			}
		}
		core := models.DefaultCoreIssues(p.ID)
		if err := tx.Create(&core).Error; err != nil {
			return err
		}
		var err error
		out, err = loadPatient(tx, p.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return out, nil
}

// Read returns the full aggregate.
func (s *Patients) Read(ctx context.Context, id uint) (*models.Patient, error) {
	var out *models.Patient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = loadPatient(tx, id)
		return err
	})
	return out, err
}

// List returns every patient ordered by name with kids attached.
func (s *Patients) List(ctx context.Context) ([]models.Patient, error) {
	ps := []models.Patient{}
	if err := s.db.WithContext(ctx).
		Preload("Kids", orderByID).
		Order("full_name asc, id asc").
		Find(&ps).Error; err != nil {
		return nil, err
	}
	for i := range ps {
		normalize(&ps[i])
	}
	return ps, nil
}

// Update applies the fields present in the patch. A nested core_issues
// object is merged onto the patient's CoreIssues, creating it if missing.
func (s *Patients) Update(ctx context.Context, id uint, in Patch) (*models.Patient, error) {
	coreIn, err := in.nested("core_issues")
	if err != nil {
		return nil, err
	}

	var out *models.Patient
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Patient
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "patient", id)
		}
		n, err := patientFields.apply(&p, in)
		if err != nil {
			return err
		}
		if n > 0 {
			if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
				return err
			}
		}

		if coreIn != nil {
			if err := mergeCoreIssues(tx, id, coreIn); err != nil {
				return err
			}
		}

		out, err = loadPatient(tx, id)
		return err
	})
	return out, err
}

func mergeCoreIssues(tx *gorm.DB, patientID uint, in Patch) error {
	var core models.CoreIssues
	err := tx.Where("patient_id = ?", patientID).First(&core).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		core = models.DefaultCoreIssues(patientID)
		if err := tx.Create(&core).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	n, err := coreIssuesFields.apply(&core, in)
	if err != nil || n == 0 {
		return err
	}
	return tx.Save(&core).Error
}

// Delete removes the patient and everything it owns, atomically.
func (s *Patients) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Patient
		if err := tx.Select("id").First(&p, id).Error; err != nil {
			return notFound(err, "patient", id)
		}
		for _, child := range []any{
			&models.Kid{},
			&models.CoreIssues{},
			&models.Session{},
			&models.TrackedIssue{},
		} {
			if err := tx.Where("patient_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Patient{}, id).Error
	})
}

func (s *Patients) exists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Patient{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("patient %d: %w", id, ErrNotFound)
	}
	return nil
}

func loadPatient(tx *gorm.DB, id uint) (*models.Patient, error) {
	var p models.Patient
	err := tx.
		Preload("Kids", orderByID).
		Preload("CoreIssues").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("visit_date desc, id desc")
		}).
		Preload("TrackedIssues", orderByID).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err, "patient", id)
	}
	normalize(&p)
	return &p, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}

// normalize swaps nil collections for empty ones so they encode as [].
func normalize(p *models.Patient) {
	if p.Kids == nil {
		p.Kids = []models.Kid{}
	}
	if p.Sessions == nil {
		p.Sessions = []models.Session{}
	}
	if p.TrackedIssues == nil {
		p.TrackedIssues = []models.TrackedIssue{}
	}
	if p.PreviouslySoughtHelp == nil {
		p.PreviouslySoughtHelp = datatypes.JSONSlice[string]{}
	}
	if c := p.CoreIssues; c != nil {
		if c.NiyyathRelated == nil {
			c.NiyyathRelated = datatypes.JSONSlice[string]{}
		}
		if c.NajasRelated == nil {
			c.NajasRelated = datatypes.JSONSlice[string]{}
		}
	}
}

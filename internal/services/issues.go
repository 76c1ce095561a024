package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/clinicxz/backend/internal/models"
)

type NewIssue struct {
	Name               string `json:"name"`
	ProgressPercentage int    `json:"progress_percentage"`
}

func checkProgress(v int) error {
	if v < 0 || v > 100 {
		return invalid("progress_percentage must be within 0..100, got %d", v)
	}
	return nil
}

func (s *Patients) CreateIssue(ctx context.Context, patientID uint, in NewIssue) (*models.TrackedIssue, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if err := checkProgress(in.ProgressPercentage); err != nil {
		return nil, err
	}

	issue := models.TrackedIssue{Name: name, ProgressPercentage: in.ProgressPercentage, PatientID: patientID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.exists(tx, patientID); err != nil {
			return err
		}
		return tx.Create(&issue).Error
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue applies name and/or progress_percentage when present.
func (s *Patients) UpdateIssue(ctx context.Context, id uint, in Patch) (*models.TrackedIssue, error) {
	var issue models.TrackedIssue
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&issue, id).Error; err != nil {
			return notFound(err, "tracked issue", id)
		}
		n, err := issueFields.apply(&issue, in)
		if err != nil || n == 0 {
			return err
		}
		if err := checkProgress(issue.ProgressPercentage); err != nil {
			return err
		}
		return tx.Save(&issue).Error
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *Patients) DeleteIssue(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.TrackedIssue{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "tracked issue", id)
		}
		return nil
	})
}

package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/clinicxz/backend/internal/models"
)

type ProgressUpdate struct {
	SubIssueID         uint `json:"sub_issue_id"`
	ProgressPercentage int  `json:"progress_percentage"`
}

type NewSession struct {
	Title           string           `json:"title"`
	Date            *models.Date     `json:"date"`
	Log             string           `json:"log"`
	ProgressUpdates []ProgressUpdate `json:"progress_updates"`
}

// RecordVisit logs a session for the patient, dated today unless a date is
// given, and applies the progress updates in the same transaction. Updates
// naming a tracked issue of another patient, an unknown issue, or a
// percentage outside 0..100 are skipped without error.
func (s *Patients) RecordVisit(ctx context.Context, patientID uint, in NewSession) (*models.Session, error) {
	sess := models.Session{
		Title:     in.Title,
		Log:       in.Log,
		PatientID: patientID,
		Date:      models.DateOf(s.now()),
	}
	if in.Date != nil && !in.Date.IsZero() {
		sess.Date = *in.Date
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.exists(tx, patientID); err != nil {
			return err
		}
		if err := tx.Create(&sess).Error; err != nil {
			return err
		}
		for _, u := range in.ProgressUpdates {
			applied, err := applyProgress(tx, patientID, u)
			if err != nil {
				return err
			}
			if !applied {
				log.Debug().
					Uint("patient_id", patientID).
					Uint("sub_issue_id", u.SubIssueID).
					Msg("progress update skipped")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func applyProgress(tx *gorm.DB, patientID uint, u ProgressUpdate) (bool, error) {
	if checkProgress(u.ProgressPercentage) != nil {
		return false, nil
	}
	var issue models.TrackedIssue
	err := tx.Where("id = ? AND patient_id = ?", u.SubIssueID, patientID).First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := tx.Model(&issue).Update("progress_percentage", u.ProgressPercentage).Error; err != nil {
		return false, err
	}
	return true, nil
}

// UpdateSession applies the allow-listed fields (title, date, log) present in the patch.
func (s *Patients) UpdateSession(ctx context.Context, id uint, in Patch) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sess, id).Error; err != nil {
			return notFound(err, "session", id)
		}
		n, err := sessionFields.apply(&sess, in)
		if err != nil || n == 0 {
			return err
		}
		return tx.Save(&sess).Error
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

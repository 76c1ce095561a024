package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicxz/backend/internal/models"
)

// recentVisitPool is how many of the latest sessions are considered before
// deduplicating by patient.
const recentVisitPool = 5

type RecentVisit struct {
	PatientName   string      `json:"patient_name"`
	LastVisitDate models.Date `json:"last_visit_date"`
}

type DashboardStats struct {
	TotalPatients        int64         `json:"total_patients"`
	UpcomingAppointments int64         `json:"upcoming_appointments"`
	RecentPatientVisits  []RecentVisit `json:"recent_patient_visits"`
}

type Dashboard struct {
	db *gorm.DB
}

func NewDashboard(gdb *gorm.DB) *Dashboard {
	return &Dashboard{db: gdb}
}

// Stats computes the dashboard in one read transaction. The newest sessions
// are picked first and only then reduced to one entry per patient, so fewer
// than five entries may come back.
func (d *Dashboard) Stats(ctx context.Context) (*DashboardStats, error) {
	out := &DashboardStats{RecentPatientVisits: []RecentVisit{}}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Patient{}).Count(&out.TotalPatients).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ScheduleEvent{}).
			Where("status = ?", models.StatusScheduled).
			Count(&out.UpcomingAppointments).Error; err != nil {
			return err
		}

		type visitRow struct {
			PatientID uint
			FullName  string
			VisitDate models.Date
		}
		var rows []visitRow
		if err := tx.Table("sessions").
			Select("sessions.patient_id, patients.full_name, sessions.visit_date").
			Joins("JOIN patients ON patients.id = sessions.patient_id").
			Order("sessions.visit_date desc, sessions.id desc").
			Limit(recentVisitPool).
			Scan(&rows).Error; err != nil {
			return err
		}

		seen := make(map[uint]struct{}, len(rows))
		for _, r := range rows {
			if _, dup := seen[r.PatientID]; dup {
				continue
			}
			seen[r.PatientID] = struct{}{}
			out.RecentPatientVisits = append(out.RecentPatientVisits, RecentVisit{
				PatientName:   r.FullName,
				LastVisitDate: r.VisitDate,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

package services

import (
	"encoding/json"
	"strings"

	"github.com/clinicxz/backend/internal/models"
)

// Patch is a partial update: only the keys present are applied.
type Patch map[string]json.RawMessage

type fieldSetter[T any] func(dst *T, raw json.RawMessage) error

type fieldMap[T any] map[string]fieldSetter[T]

// field decodes the raw value straight onto the referenced struct field.
func field[T, V any](ref func(*T) *V) fieldSetter[T] {
	return func(dst *T, raw json.RawMessage) error {
		return json.Unmarshal(raw, ref(dst))
	}
}

// requiredString rejects null and blank values.
func requiredString[T any](name string, ref func(*T) *string) fieldSetter[T] {
	return func(dst *T, raw json.RawMessage) error {
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if v == nil || strings.TrimSpace(*v) == "" {
			return invalid("%s is required", name)
		}
		*ref(dst) = strings.TrimSpace(*v)
		return nil
	}
}

// apply runs the setter of every allow-listed key in p and returns how many
// were applied. Keys outside the allow-list are ignored.
func (m fieldMap[T]) apply(dst *T, p Patch) (int, error) {
	n := 0
	for key, raw := range p {
		set, ok := m[key]
		if !ok {
			continue
		}
		if err := set(dst, raw); err != nil {
			if isInvalid(err) {
				return n, err
			}
			return n, invalid("field %s: %v", key, err)
		}
		n++
	}
	return n, nil
}

// nested returns the object under key, or nil when absent or null.
func (p Patch) nested(key string) (Patch, error) {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var out Patch
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, invalid("field %s: %v", key, err)
	}
	if out == nil {
		out = Patch{}
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

type pt = models.Patient

var patientFields = fieldMap[pt]{
	"full_name":                    requiredString("full_name", func(p *pt) *string { return &p.FullName }),
	"phone_number":                 requiredString("phone_number", func(p *pt) *string { return &p.PhoneNumber }),
	"age":                          field(func(p *pt) **int { return &p.Age }),
	"place":                        field(func(p *pt) *string { return &p.Place }),
	"father_name":                  field(func(p *pt) *string { return &p.FatherName }),
	"school_class_studied":         field(func(p *pt) *string { return &p.SchoolClassStudied }),
	"madrasa_class_studied":        field(func(p *pt) *string { return &p.MadrasaClassStudied }),
	"is_married":                   field(func(p *pt) *bool { return &p.IsMarried }),
	"husband_name":                 field(func(p *pt) *string { return &p.HusbandName }),
	"husband_job":                  field(func(p *pt) *string { return &p.HusbandJob }),
	"kids_count":                   field(func(p *pt) **int { return &p.KidsCount }),
	"is_working":                   field(func(p *pt) *bool { return &p.IsWorking }),
	"has_siblings":                 field(func(p *pt) *bool { return &p.HasSiblings }),
	"siblings_have_issues":         field(func(p *pt) *bool { return &p.SiblingsHaveIssues }),
	"core_reason":                  field(func(p *pt) *string { return &p.CoreReason }),
	"when_it_started":              field(func(p *pt) *string { return &p.WhenItStarted }),
	"severity":                     field(func(p *pt) *string { return &p.Severity }),
	"previously_sought_help":       stringList(func(p *pt) *[]string { return (*[]string)(&p.PreviouslySoughtHelp) }),
	"previously_sought_help_other": field(func(p *pt) *string { return &p.PreviouslySoughtHelpOther }),
	"medicine_status":              field(func(p *pt) *string { return &p.MedicineStatus }),
	"other_medications":            field(func(p *pt) *string { return &p.OtherMedications }),
	"other_diseases":               field(func(p *pt) *string { return &p.OtherDiseases }),
	"is_genetic":                   field(func(p *pt) *bool { return &p.IsGenetic }),
	"genetic_relative_name":        field(func(p *pt) *string { return &p.GeneticRelativeName }),
}

type ci = models.CoreIssues

var coreIssuesFields = fieldMap[ci]{
	"is_about_belief":      field(func(c *ci) *bool { return &c.IsAboutBelief }),
	"niyyath_related":      stringList(func(c *ci) *[]string { return (*[]string)(&c.NiyyathRelated) }),
	"wudu_time":            field(func(c *ci) *string { return &c.WuduTime }),
	"namaz_time":           field(func(c *ci) *string { return &c.NamazTime }),
	"najas_related":        stringList(func(c *ci) *[]string { return (*[]string)(&c.NajasRelated) }),
	"dog_related":          field(func(c *ci) *bool { return &c.DogRelated }),
	"pig_related":          field(func(c *ci) *bool { return &c.PigRelated }),
	"over_soaping":         field(func(c *ci) *bool { return &c.OverSoaping }),
	"fear_of_death":        field(func(c *ci) *bool { return &c.FearOfDeath }),
	"fear_of_disease":      field(func(c *ci) *bool { return &c.FearOfDisease }),
	"door_locking_related": field(func(c *ci) *bool { return &c.DoorLockingRelated }),
	"other_issues":         field(func(c *ci) *string { return &c.OtherIssues }),
}

var sessionFields = fieldMap[models.Session]{
	"title": field(func(s *models.Session) *string { return &s.Title }),
	"date":  sessionDate,
	"log":   field(func(s *models.Session) *string { return &s.Log }),
}

var issueFields = fieldMap[models.TrackedIssue]{
	"name":                requiredString("name", func(i *models.TrackedIssue) *string { return &i.Name }),
	"progress_percentage": field(func(i *models.TrackedIssue) *int { return &i.ProgressPercentage }),
}

// stringList treats null as an empty list.
func stringList[T any](ref func(*T) *[]string) fieldSetter[T] {
	return func(dst *T, raw json.RawMessage) error {
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if v == nil {
			v = []string{}
		}
		*ref(dst) = v
		return nil
	}
}

func sessionDate(s *models.Session, raw json.RawMessage) error {
	var d models.Date
	if err := json.Unmarshal(raw, &d); err != nil {
		return err
	}
	if d.IsZero() {
		return invalid("date cannot be empty")
	}
	s.Date = d
	return nil
}

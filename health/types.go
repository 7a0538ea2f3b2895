package health

import "time"

// HealthDeclaration is a symptom/condition declaration submitted for a
// student.
type HealthDeclaration struct {
	ID          int64     `json:"id"`
	StudentCode string    `json:"studentCode"`
	StudentName string    `json:"studentName"`
	Symptoms    []string  `json:"symptoms"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	DeclaredAt  time.Time `json:"declaredAt"`
}

// MedicationRequest asks the school nurse to administer medication during
// school hours.
type MedicationRequest struct {
	ID          int64     `json:"id"`
	StudentCode string    `json:"studentCode"`
	Medication  string    `json:"medication"`
	Dosage      string    `json:"dosage"`
	Schedule    string    `json:"schedule"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

// VaccinationRecord is one administered or scheduled vaccination for a
// student.
type VaccinationRecord struct {
	ID           int64      `json:"id"`
	StudentCode  string     `json:"studentCode"`
	Vaccine      string     `json:"vaccine"`
	DoseNumber   int        `json:"doseNumber"`
	Administered bool       `json:"administered"`
	Date         *time.Time `json:"date,omitempty"`
}

// CheckupSchedule is a planned periodic health checkup for a class or grade.
type CheckupSchedule struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	TargetGroup string    `json:"targetGroup"`
	Location    string    `json:"location,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

package session

import "github.com/vortexmedx/medconnect-backend/internal/roles"

// Section names a navigation subtree of the mobile app.
type Section string

const (
	SectionAuth     Section = "auth"
	SectionPatient  Section = "patient"
	SectionDoctor   Section = "doctor"
	SectionLabOwner Section = "labOwner"
)

// SectionFor maps a role to its subtree. This is the one switch applied
// everywhere a role-conditional choice is needed.
func SectionFor(role roles.Role) Section {
	switch role {
	case roles.LabOwner:
		return SectionLabOwner
	case roles.Doctor:
		return SectionDoctor
	default:
		return SectionPatient
	}
}

// screens lists the screen set per section, mirroring the app's navigator.
// The client uses this to build its tab bar after sign-in.
var screens = map[Section][]string{
	SectionAuth:     {"Login", "Signup", "ForgotPassword"},
	SectionPatient:  {"Home", "MedicalHistory", "Upload", "Details", "Profile", "ViewAppointments"},
	SectionDoctor:   {"Home", "History", "Upload", "Details", "Profile", "PatientRecords", "ViewAppointments"},
	SectionLabOwner: {"Home", "PatientRecords", "Upload", "Details", "Profile", "UploadTestResult", "ScheduleNewTest"},
}

// Screens returns the screen set reachable in s; unknown sections get the
// auth screens.
func (s Section) Screens() []string {
	if set, ok := screens[s]; ok {
		return set
	}
	return screens[SectionAuth]
}

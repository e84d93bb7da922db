package models

import (
	"time"

	"github.com/lib/pq"
)

// ExperienceLevel is the seniority a developer reports on their profile.
type ExperienceLevel string

const (
	ExperienceJunior    ExperienceLevel = "Junior"
	ExperienceMidLevel  ExperienceLevel = "Mid-Level"
	ExperienceSenior    ExperienceLevel = "Senior"
	ExperienceLead      ExperienceLevel = "Lead"
	ExperienceArchitect ExperienceLevel = "Architect"
)

// ExperienceLevels lists every accepted experience level.
var ExperienceLevels = []ExperienceLevel{
	ExperienceJunior, ExperienceMidLevel, ExperienceSenior, ExperienceLead, ExperienceArchitect,
}

func (e ExperienceLevel) Valid() bool {
	for _, level := range ExperienceLevels {
		if e == level {
			return true
		}
	}
	return false
}

// Intent is what a user is looking for on the platform.
type Intent string

const (
	IntentCollaboration    Intent = "Collaboration"
	IntentMentorship       Intent = "Mentorship"
	IntentNetworking       Intent = "Networking"
	IntentJobOpportunities Intent = "Job Opportunities"
	IntentFriendship       Intent = "Friendship"
)

// Intents lists every accepted intent.
var Intents = []Intent{
	IntentCollaboration, IntentMentorship, IntentNetworking, IntentJobOpportunities, IntentFriendship,
}

func (i Intent) Valid() bool {
	for _, intent := range Intents {
		if i == intent {
			return true
		}
	}
	return false
}

// User is a profile row. Credentials live in the same table but are owned by
// the auth service and never selected here.
type User struct {
	ID              string          `db:"id" json:"id"`
	FirstName       string          `db:"first_name" json:"firstName"`
	LastName        string          `db:"last_name" json:"lastName"`
	Email           string          `db:"email" json:"email"`
	Age             int             `db:"age" json:"age"`
	Bio             string          `db:"bio" json:"bio"`
	Skills          pq.StringArray  `db:"skills" json:"skills"`
	ProfilePicture  string          `db:"profile_picture" json:"profilePicture"`
	Location        string          `db:"location" json:"location"`
	Github          string          `db:"github" json:"github"`
	Linkedin        string          `db:"linkedin" json:"linkedin"`
	ExperienceLevel ExperienceLevel `db:"experience_level" json:"experienceLevel"`
	JobTitle        string          `db:"job_title" json:"jobTitle"`
	Company         string          `db:"company" json:"company"`
	LookingFor      Intent          `db:"looking_for" json:"lookingFor"`
	IsOnline        bool            `db:"is_online" json:"isOnline"`
	LastSeen        time.Time       `db:"last_seen" json:"lastSeen"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// MatchProfile is the projection returned for a user's matches.
type MatchProfile struct {
	ID             string `db:"id" json:"id"`
	FirstName      string `db:"first_name" json:"firstName"`
	LastName       string `db:"last_name" json:"lastName"`
	ProfilePicture string `db:"profile_picture" json:"profilePicture"`
	Bio            string `db:"bio" json:"bio"`
	Age            int    `db:"age" json:"age"`
}

// Candidate is the projection returned by discovery.
type Candidate struct {
	ID              string          `db:"id" json:"id"`
	FirstName       string          `db:"first_name" json:"firstName"`
	LastName        string          `db:"last_name" json:"lastName"`
	Age             int             `db:"age" json:"age"`
	Bio             string          `db:"bio" json:"bio"`
	Skills          pq.StringArray  `db:"skills" json:"skills"`
	ProfilePicture  string          `db:"profile_picture" json:"profilePicture"`
	Location        string          `db:"location" json:"location"`
	Github          string          `db:"github" json:"github"`
	Linkedin        string          `db:"linkedin" json:"linkedin"`
	ExperienceLevel ExperienceLevel `db:"experience_level" json:"experienceLevel"`
	JobTitle        string          `db:"job_title" json:"jobTitle"`
	Company         string          `db:"company" json:"company"`
	LookingFor      Intent          `db:"looking_for" json:"lookingFor"`
	IsOnline        bool            `db:"is_online" json:"isOnline"`
	LastSeen        time.Time       `db:"last_seen" json:"lastSeen"`
}

// ParticipantView is the public identity of a chat participant.
type ParticipantView struct {
	ID             string    `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	ProfilePicture string    `db:"profile_picture" json:"profilePicture"`
	IsOnline       bool      `db:"is_online" json:"isOnline"`
	LastSeen       time.Time `db:"last_seen" json:"lastSeen"`
}

// SenderView identifies the author of a message.
type SenderView struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Sender narrows a participant down to the fields shown next to a message.
func (p ParticipantView) Sender() SenderView {
	return SenderView{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, ProfilePicture: p.ProfilePicture}
}

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	Bio             *string          `json:"bio" binding:"omitempty,max=500"`
	Skills          *[]string        `json:"skills" binding:"omitempty,dive,max=50"`
	Location        *string          `json:"location"`
	Github          *string          `json:"github"`
	Linkedin        *string          `json:"linkedin"`
	ExperienceLevel *ExperienceLevel `json:"experienceLevel" binding:"omitempty,experience_level"`
	JobTitle        *string          `json:"jobTitle"`
	Company         *string          `json:"company"`
	LookingFor      *Intent          `json:"lookingFor" binding:"omitempty,intent"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Bio == nil && u.Skills == nil && u.Location == nil && u.Github == nil &&
		u.Linkedin == nil && u.ExperienceLevel == nil && u.JobTitle == nil &&
		u.Company == nil && u.LookingFor == nil
}

package grader

import (
	"time"

	"github.com/helxplatform/eduhelx-student-ext/domain"
)

// Wire shapes for grader API payloads. These never escape this package;
// every fetcher converts to domain values before returning.

type courseWire struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	MasterRemoteURL string `json:"master_remote_url"`
}

type studentWire struct {
	Onyen         string `json:"onyen"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	ForkRemoteURL string `json:"fork_remote_url"`
	ForkCloned    bool   `json:"fork_cloned"`
}

type instructorWire struct {
	Onyen     string `json:"onyen"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type assignmentWire struct {
	ID                    int        `json:"id"`
	Name                  string     `json:"name"`
	DirectoryPath         string     `json:"directory_path"`
	CreatedDate           time.Time  `json:"created_date"`
	LastModifiedDate      time.Time  `json:"last_modified_date"`
	AvailableDate         *time.Time `json:"available_date"`
	DueDate               *time.Time `json:"due_date"`
	AdjustedAvailableDate *time.Time `json:"adjusted_available_date"`
	AdjustedDueDate       *time.Time `json:"adjusted_due_date"`
}

type submissionWire struct {
	ID             int       `json:"id"`
	AssignmentID   int       `json:"assignment_id"`
	CommitID       string    `json:"commit_id"`
	Summary        string    `json:"summary"`
	Description    string    `json:"description"`
	SubmissionTime time.Time `json:"submission_time"`
}

type settingsWire struct {
	GiteaSSHURL string `json:"gitea_ssh_url"`
}

func (w courseWire) toDomain() domain.Course {
	return domain.Course{
		ID:              w.ID,
		Name:            w.Name,
		MasterRemoteURL: w.MasterRemoteURL,
	}
}

func (w studentWire) toDomain() domain.Student {
	return domain.Student{
		Onyen:         w.Onyen,
		FirstName:     w.FirstName,
		LastName:      w.LastName,
		Email:         w.Email,
		ForkRemoteURL: w.ForkRemoteURL,
		ForkCloned:    w.ForkCloned,
	}
}

func (w instructorWire) toDomain() domain.Instructor {
	return domain.Instructor{
		Onyen:     w.Onyen,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Email:     w.Email,
	}
}

func (w assignmentWire) toDomain() (domain.Assignment, error) {
	if err := domain.ValidateDates(w.AdjustedAvailableDate, w.AdjustedDueDate); err != nil {
		return domain.Assignment{}, domain.WrapError(domain.ErrCodeTransport,
			"grader returned inconsistent assignment dates", err)
	}
	return domain.Assignment{
		ID:                  w.ID,
		Name:                w.Name,
		DirectoryPath:       w.DirectoryPath,
		CreatedAt:           w.CreatedDate,
		LastModifiedAt:      w.LastModifiedDate,
		AvailableAt:         w.AvailableDate,
		DueAt:               w.DueDate,
		AdjustedAvailableAt: w.AdjustedAvailableDate,
		AdjustedDueAt:       w.AdjustedDueDate,
	}, nil
}

func (w submissionWire) toDomain() domain.Submission {
	return domain.Submission{
		ID:           w.ID,
		AssignmentID: w.AssignmentID,
		CommitID:     w.CommitID,
		Summary:      w.Summary,
		Description:  w.Description,
		SubmittedAt:  w.SubmissionTime,
	}
}

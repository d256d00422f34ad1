package grader

import (
	"context"

	"github.com/helxplatform/eduhelx-student-ext/domain"
)

// FetchCourseAndStudent returns the course/student snapshot. Path-independent
// reference data; polled on its own schedule.
func (c *Client) FetchCourseAndStudent(ctx context.Context) (domain.CourseSnapshot, error) {
	var sw studentWire
	if err := c.get(ctx, "/student/self", nil, &sw); err != nil {
		return domain.CourseSnapshot{}, err
	}
	var cw courseWire
	if err := c.get(ctx, "/course", nil, &cw); err != nil {
		return domain.CourseSnapshot{}, err
	}
	return domain.CourseSnapshot{
		Course:  cw.toDomain(),
		Student: sw.toDomain(),
	}, nil
}

// FetchInstructorAndRoster returns the instructor-mode snapshot: the
// authenticated instructor, the course and its enrolled students.
func (c *Client) FetchInstructorAndRoster(ctx context.Context) (domain.RosterSnapshot, error) {
	var iw instructorWire
	if err := c.get(ctx, "/instructor/self", nil, &iw); err != nil {
		return domain.RosterSnapshot{}, err
	}
	var sws []studentWire
	if err := c.get(ctx, "/students", nil, &sws); err != nil {
		return domain.RosterSnapshot{}, err
	}
	var cw courseWire
	if err := c.get(ctx, "/course", nil, &cw); err != nil {
		return domain.RosterSnapshot{}, err
	}

	students := make([]domain.Student, 0, len(sws))
	for _, sw := range sws {
		students = append(students, sw.toDomain())
	}
	return domain.RosterSnapshot{
		Instructor: iw.toDomain(),
		Students:   students,
		Course:     cw.toDomain(),
	}, nil
}

// Settings are grader-side deployment settings the extension needs at setup.
type Settings struct {
	GiteaSSHURL string
}

// FetchSettings returns grader deployment settings.
func (c *Client) FetchSettings(ctx context.Context) (Settings, error) {
	var sw settingsWire
	if err := c.get(ctx, "/settings", nil, &sw); err != nil {
		return Settings{}, err
	}
	return Settings{GiteaSSHURL: sw.GiteaSSHURL}, nil
}

// MarkForkAsCloned records on the grader that the student's fork has been
// cloned locally.
func (c *Client) MarkForkAsCloned(ctx context.Context) error {
	return c.post(ctx, "/student/self/fork_cloned", nil, nil)
}

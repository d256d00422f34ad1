package domain

// AssignmentSnapshot is an internally consistent read of the assignment
// domain, bound to the working path it was fetched for. The list and the
// current assignment always come from the same fetch, so readers can never
// observe the list of one path paired with the current assignment of another.
type AssignmentSnapshot struct {
	// Path is the context key this snapshot was fetched for.
	Path        string       `json:"path"`
	Assignments []Assignment `json:"assignments"`
	// Current is the assignment containing Path, nil when the path is not
	// inside an assignment directory (or not inside the class repo at all).
	Current *Assignment `json:"current_assignment"`
	// InClassRepo distinguishes "outside the class repository" from "in the
	// repository but not inside an assignment directory".
	InClassRepo bool `json:"in_class_repo"`
}

// CourseSnapshot pairs the course with the authenticated student.
type CourseSnapshot struct {
	Course  Course  `json:"course"`
	Student Student `json:"student"`
}

// RosterSnapshot is the instructor-mode view: the instructor, their course
// and the enrolled students.
type RosterSnapshot struct {
	Instructor Instructor `json:"instructor"`
	Students   []Student  `json:"students"`
	Course     Course     `json:"course"`
}

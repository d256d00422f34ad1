package classrepo

import (
	"path/filepath"
	"strings"

	"github.com/helxplatform/eduhelx-student-ext/domain"
)

// fixedRepoRoot is where the class repository lives relative to the server's
// working directory, formatted with the course name.
const fixedRepoRoot = "eduhelx/%s-student"

// Root returns the class repository root for a course, relative to the
// server's working directory. The relative path for the server is the root
// path for the UI.
func Root(courseName string) string {
	name := strings.ReplaceAll(courseName, " ", "_")
	return strings.Replace(fixedRepoRoot, "%s", name, 1)
}

// Repo resolves working paths against the class repository of one course.
// It is pure path arithmetic: no filesystem access, so it behaves the same
// whether or not the repository has been cloned yet.
type Repo struct {
	root string
}

// New builds a Repo rooted under baseDir (normally the server's working
// directory).
func New(course domain.Course, baseDir string) *Repo {
	return &Repo{root: filepath.Join(baseDir, Root(course.Name))}
}

// RootDir returns the resolved repository root.
func (r *Repo) RootDir() string {
	return r.root
}

// Contains reports whether path is inside the class repository.
func (r *Repo) Contains(path string) bool {
	rel, err := filepath.Rel(r.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// AssignmentDir returns the on-disk directory of an assignment.
func (r *Repo) AssignmentDir(a domain.Assignment) string {
	return filepath.Join(r.root, a.DirectoryPath)
}

// UIPath maps an assignment directory into the UI's path space. The UI can
// only address files under the working directory, which it treats as "/".
func (r *Repo) UIPath(a domain.Assignment, cwd string) string {
	rel, err := filepath.Rel(cwd, r.AssignmentDir(a))
	if err != nil {
		return "/" + a.DirectoryPath
	}
	return filepath.Join("/", rel)
}

// CurrentAssignment returns the assignment whose directory contains path,
// or nil when the path is not inside any assignment. The caller is expected
// to have checked Contains first when it needs to distinguish "outside the
// repo" from "in the repo but not in an assignment".
func (r *Repo) CurrentAssignment(assignments []domain.Assignment, path string) *domain.Assignment {
	clean := filepath.Clean(path)
	for i := range assignments {
		dir := r.AssignmentDir(assignments[i])
		rel, err := filepath.Rel(dir, clean)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)) {
			return &assignments[i]
		}
	}
	return nil
}

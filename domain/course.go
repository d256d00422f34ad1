package domain

// Course is the class this extension instance serves. Read-mostly reference
// data, fetched alongside assignments but independently pollable.
type Course struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	MasterRemoteURL string `json:"master_remote_url"`
}

// Student is the authenticated user in student mode.
type Student struct {
	Onyen         string `json:"onyen"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	ForkRemoteURL string `json:"fork_remote_url"`
	ForkCloned    bool   `json:"fork_cloned"`
}

// Instructor is the authenticated user in instructor mode.
type Instructor struct {
	Onyen     string `json:"onyen"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

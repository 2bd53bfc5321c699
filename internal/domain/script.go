package domain

import "time"

// Script is a generated script persisted together with the prompt that
// produced it. Generation itself happens outside this service.
type Script struct {
	ID        int
	Model     string
	Prompt    string
	Output    string
	CreatedAt time.Time
}

// PromptTemplate is a reusable prompt body.
type PromptTemplate struct {
	ID        int
	Name      string
	Content   string
	CreatedAt time.Time
}

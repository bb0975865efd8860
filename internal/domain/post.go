package domain

import (
	"strings"
	"time"
)

// Post is a blog post written by a user.
type Post struct {
	ID             string
	Title          string
	Content        string
	Image          string
	ImageStorageID string
	Tags           []string
	AuthorID       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ParseTags splits a comma separated tag field. Blank entries are dropped
// and the result is never nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// HasTag reports whether the post carries exactly the given tag.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

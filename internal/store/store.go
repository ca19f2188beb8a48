// ABOUTME: Store interface and data types for studybuddy persistence
// ABOUTME: Defines User, Resource, the ResourceKind enum, and the Store interface

package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Store errors.
var (
	// ErrUserNotFound is returned when no user row exists for an external id
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidKind is returned when a resource kind is outside the enum
	ErrInvalidKind = errors.New("invalid resource kind")

	// ErrInvalidResource is returned when a resource fails field validation
	ErrInvalidResource = errors.New("invalid resource")
)

// ResourceKind is the closed enumeration of resource types. It is validated
// in Go before any write; the matching SQL CHECK constraint is only a backstop.
type ResourceKind string

const (
	KindArticle  ResourceKind = "Article"
	KindVideo    ResourceKind = "Video"
	KindTutorial ResourceKind = "Tutorial"
)

// Kinds returns all valid resource kinds in display order.
func Kinds() []ResourceKind {
	return []ResourceKind{KindArticle, KindVideo, KindTutorial}
}

// Valid reports whether k is one of the known kinds.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindArticle, KindVideo, KindTutorial:
		return true
	}
	return false
}

// ParseKind converts a string into a ResourceKind, rejecting unknown values.
func ParseKind(s string) (ResourceKind, error) {
	k := ResourceKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q (want one of Article, Video, Tutorial)", ErrInvalidKind, s)
	}
	return k, nil
}

// User represents a bot user with their committed subject preferences.
// Topics are overwritten wholesale on every commit, never merged.
type User struct {
	ID         int64
	ExternalID int64 // messaging-platform user id, unique
	Username   string
	Topics     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Resource is a stored learning resource surfaced to users by subject.
type Resource struct {
	ID        int64
	Subject   string
	Kind      ResourceKind
	Title     string
	Link      string
	CreatedAt time.Time
}

// Validate checks the resource fields before persistence: non-empty strings,
// a known kind, and a well-formed absolute URL.
func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("%w: subject is empty", ErrInvalidResource)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, r.Kind)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidResource)
	}

	u, err := url.Parse(r.Link)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: link %q is not a valid absolute URL", ErrInvalidResource, r.Link)
	}

	return nil
}

// Store defines the persistence interface for users and resources.
type Store interface {
	// SetUserTopics upserts the user row, overwriting any previous topics
	SetUserTopics(ctx context.Context, externalID int64, username string, topics []string) error

	// GetUserTopics returns the committed topics for a user.
	// Returns ErrUserNotFound if the user never committed a selection.
	GetUserTopics(ctx context.Context, externalID int64) ([]string, error)

	// CreateResource persists a new resource after validation
	CreateResource(ctx context.Context, r *Resource) error

	// ListResourcesBySubjects returns resources whose subject is in the given set,
	// ordered by subject, kind, title
	ListResourcesBySubjects(ctx context.Context, subjects []string) ([]*Resource, error)

	// ListResources returns all resources, ordered by subject, kind, title
	ListResources(ctx context.Context) ([]*Resource, error)

	Close() error
}

// ABOUTME: Tests for the SQLite store operations
// ABOUTME: Covers user topic upserts, resource CRUD, kind validation, and subject filtering

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSetUserTopics_CreatesUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.SetUserTopics(ctx, 1001, "ivan", []string{"Математика", "Физика"})
	require.NoError(t, err)

	topics, err := s.GetUserTopics(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, []string{"Математика", "Физика"}, topics)
}

func TestSetUserTopics_OverwritesNotMerges(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetUserTopics(ctx, 1001, "ivan", []string{"Математика", "Физика"}))
	require.NoError(t, s.SetUserTopics(ctx, 1001, "ivan", []string{"История"}))

	topics, err := s.GetUserTopics(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, []string{"История"}, topics, "a commit replaces previous topics entirely")
}

func TestSetUserTopics_NilTopics(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetUserTopics(ctx, 1001, "ivan", nil))

	topics, err := s.GetUserTopics(ctx, 1001)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestGetUserTopics_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetUserTopics(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateResource(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := &Resource{
		Subject: "Математика",
		Kind:    KindArticle,
		Title:   "Введение в пределы",
		Link:    "https://example.org/limits",
	}
	require.NoError(t, s.CreateResource(ctx, r))
	assert.NotZero(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	all, err := s.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Введение в пределы", all[0].Title)
	assert.Equal(t, KindArticle, all[0].Kind)
}

func TestCreateResource_Validation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		r       Resource
		wantErr error
	}{
		{
			name:    "unknown kind",
			r:       Resource{Subject: "Физика", Kind: "Podcast", Title: "t", Link: "https://x.org"},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "empty subject",
			r:       Resource{Subject: "  ", Kind: KindVideo, Title: "t", Link: "https://x.org"},
			wantErr: ErrInvalidResource,
		},
		{
			name:    "empty title",
			r:       Resource{Subject: "Физика", Kind: KindVideo, Title: "", Link: "https://x.org"},
			wantErr: ErrInvalidResource,
		},
		{
			name:    "relative link",
			r:       Resource{Subject: "Физика", Kind: KindVideo, Title: "t", Link: "/just/a/path"},
			wantErr: ErrInvalidResource,
		},
		{
			name:    "garbage link",
			r:       Resource{Subject: "Физика", Kind: KindVideo, Title: "t", Link: "://"},
			wantErr: ErrInvalidResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateResource(ctx, &tt.r)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing was persisted
	all, err := s.ListResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListResourcesBySubjects_Filters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateResource(ctx, &Resource{
		Subject: "Математика", Kind: KindArticle, Title: "A", Link: "http://x",
	}))
	require.NoError(t, s.CreateResource(ctx, &Resource{
		Subject: "Физика", Kind: KindVideo, Title: "B", Link: "http://y",
	}))

	got, err := s.ListResourcesBySubjects(ctx, []string{"Математика"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "Математика", got[0].Subject)
}

func TestListResourcesBySubjects_Empty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateResource(ctx, &Resource{
		Subject: "Математика", Kind: KindArticle, Title: "A", Link: "http://x",
	}))

	got, err := s.ListResourcesBySubjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.ListResourcesBySubjects(ctx, []string{"Химия"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListResourcesBySubjects_Ordering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, r := range []*Resource{
		{Subject: "Физика", Kind: KindVideo, Title: "Механика", Link: "http://a"},
		{Subject: "Математика", Kind: KindVideo, Title: "Ряды", Link: "http://b"},
		{Subject: "Математика", Kind: KindArticle, Title: "Пределы", Link: "http://c"},
	} {
		require.NoError(t, s.CreateResource(ctx, r))
	}

	got, err := s.ListResourcesBySubjects(ctx, []string{"Математика", "Физика"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Пределы", got[0].Title)
	assert.Equal(t, "Ряды", got[1].Title)
	assert.Equal(t, "Механика", got[2].Title)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("Podcast")
	assert.ErrorIs(t, err, ErrInvalidKind)
	_, err = ParseKind("article")
	assert.ErrorIs(t, err, ErrInvalidKind, "kind parsing is case-sensitive")
}

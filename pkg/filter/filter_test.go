package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-watch/pkg/domain"
)

var (
	tenderA = domain.Tender{Title: "A", URL: "http://x/1"}
	tenderB = domain.Tender{Title: "B", URL: "http://x/2"}
	tenderC = domain.Tender{Title: "C", URL: "http://x/3"}
)

func TestNewTenders(t *testing.T) {
	tests := []struct {
		name    string
		current []domain.Tender
		seen    []domain.Tender
		want    []domain.Tender
	}{
		{
			name:    "one new tender",
			current: []domain.Tender{tenderA, tenderB},
			seen:    []domain.Tender{tenderA},
			want:    []domain.Tender{tenderB},
		},
		{
			name:    "cold start reports everything",
			current: []domain.Tender{tenderA, tenderB},
			seen:    nil,
			want:    []domain.Tender{tenderA, tenderB},
		},
		{
			name:    "nothing extracted",
			current: nil,
			seen:    []domain.Tender{tenderA},
			want:    []domain.Tender{},
		},
		{
			name:    "all seen",
			current: []domain.Tender{tenderB, tenderA},
			seen:    []domain.Tender{tenderA, tenderB, tenderC},
			want:    []domain.Tender{},
		},
		{
			name:    "order of current is kept",
			current: []domain.Tender{tenderC, tenderA, tenderB},
			seen:    []domain.Tender{tenderA},
			want:    []domain.Tender{tenderC, tenderB},
		},
		{
			name:    "title edit counts as new",
			current: []domain.Tender{{Title: "A (corrigendum)", URL: "http://x/1"}},
			seen:    []domain.Tender{tenderA},
			want:    []domain.Tender{{Title: "A (corrigendum)", URL: "http://x/1"}},
		},
		{
			name:    "duplicates in current are kept",
			current: []domain.Tender{tenderB, tenderB},
			seen:    []domain.Tender{tenderA},
			want:    []domain.Tender{tenderB, tenderB},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTenders(tt.current, tt.seen)
			assert.Equal(t, tt.want, got)

			// same inputs, same answer
			assert.Equal(t, got, NewTenders(tt.current, tt.seen))
		})
	}
}

func TestNewTenders_DoesNotModifyInputs(t *testing.T) {
	current := []domain.Tender{tenderA, tenderB}
	seen := []domain.Tender{tenderA}

	NewTenders(current, seen)

	assert.Equal(t, []domain.Tender{tenderA, tenderB}, current)
	assert.Equal(t, []domain.Tender{tenderA}, seen)
}

func TestNewLatest(t *testing.T) {
	latest, isNew := NewLatest([]domain.Tender{tenderB, tenderA}, "http://x/2")
	assert.False(t, isNew)
	assert.Equal(t, tenderB, latest)

	latest, isNew = NewLatest([]domain.Tender{tenderC, tenderB}, "http://x/2")
	assert.True(t, isNew)
	assert.Equal(t, tenderC, latest)

	_, isNew = NewLatest([]domain.Tender{{Title: "renamed", URL: "http://x/2"}}, "http://x/2")
	assert.False(t, isNew)

	_, isNew = NewLatest(nil, "")
	assert.False(t, isNew)

	_, isNew = NewLatest([]domain.Tender{tenderA}, "")
	assert.True(t, isNew)
}

type failingFilter struct{}

func (failingFilter) ShouldKeep(ctx context.Context, tender domain.Tender) (bool, error) {
	return false, errors.New("boom")
}

func TestFilterTenders_PropagatesErrors(t *testing.T) {
	_, err := FilterTenders(context.Background(), []domain.Tender{tenderA}, failingFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://x/1")
}

package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orrn/printbridge/internal/core"
)

func TestJobCreator_Create(t *testing.T) {
	store := new(MockStore)
	creator := core.NewJobCreator(store, nil)

	directives := []core.Directive{core.MustDirective(`{"zpl":"^XA^FS^XZ"}`)}

	var stored *core.PrintJob
	store.On("Insert", mock.Anything, mock.AnythingOfType("*core.PrintJob")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*core.PrintJob) }).
		Return(nil)

	created, err := creator.Create(context.Background(), directives, "http://relay.local:8000/")
	require.NoError(t, err)

	parsed, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, "http://relay.local:8000/view?id="+created.ID, created.ViewURL)

	require.NotNil(t, stored)
	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, directives, stored.Directives)
	assert.False(t, stored.CreatedAt.IsZero())
	store.AssertExpectations(t)
}

func TestJobCreator_Create_EmptyPayload(t *testing.T) {
	store := new(MockStore)
	creator := core.NewJobCreator(store, nil)

	store.On("Insert", mock.Anything, mock.MatchedBy(func(j *core.PrintJob) bool {
		return len(j.Directives) == 0
	})).Return(nil)

	created, err := creator.Create(context.Background(), nil, "http://relay.local")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestJobCreator_Create_StorageFailure(t *testing.T) {
	store := new(MockStore)
	creator := core.NewJobCreator(store, nil)

	store.On("Insert", mock.Anything, mock.Anything).
		Return(fmt.Errorf("failed to commit print job: %w: %w", core.ErrStorage, errors.New("disk I/O error")))

	created, err := creator.Create(context.Background(), []core.Directive{core.MustDirective(`{"zpl":"^XA^XZ"}`)}, "http://relay.local")
	require.Error(t, err)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.False(t, core.IsValidationError(err))
}

func TestJobCreator_Create_ZeroDirective(t *testing.T) {
	store := new(MockStore)
	creator := core.NewJobCreator(store, nil)

	_, err := creator.Create(context.Background(), []core.Directive{{}}, "http://relay.local")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestJobCreator_Create_RequiresBaseURL(t *testing.T) {
	store := new(MockStore)
	creator := core.NewJobCreator(store, nil)

	_, err := creator.Create(context.Background(), nil, "")
	require.Error(t, err)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestJobCreator_Create_DistinctIDs(t *testing.T) {
	store := new(MockStore)
	creator := core.NewJobCreator(store, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		created, err := creator.Create(context.Background(), nil, "http://relay.local")
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}
}

func TestViewURL(t *testing.T) {
	assert.Equal(t, "https://print.example.com/relay/view?id=abc", core.ViewURL("https://print.example.com/relay/", "abc"))
	assert.True(t, strings.HasSuffix(core.ViewURL("http://h", "a b&c"), "/view?id=a+b%26c"))
}

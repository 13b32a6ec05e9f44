package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogger struct{ name string }

func TestRegisterAndResolve(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&fakeLogger{name: "main"}))

	var got *fakeLogger
	require.NoError(t, c.Resolve(&got))
	assert.Equal(t, "main", got.name)
}

func TestRegisterDuplicateTypeErrors(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&fakeLogger{name: "a"}))
	err := c.Register(&fakeLogger{name: "b"})
	assert.Error(t, err)
}

func TestResolveUnregisteredTypeErrors(t *testing.T) {
	c := New()
	var got *fakeLogger
	err := c.Resolve(&got)
	assert.Error(t, err)
}

func TestRegisterFactoryResolvesLazily(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterFactory(func() (*fakeLogger, error) {
		return &fakeLogger{name: "factory-built"}, nil
	}))

	var got *fakeLogger
	require.NoError(t, c.Resolve(&got))
	assert.Equal(t, "factory-built", got.name)
}

func TestRegisterFactoryPropagatesError(t *testing.T) {
	c := New()
	wantErr := errors.New("boom")
	require.NoError(t, c.RegisterFactory(func() (*fakeLogger, error) {
		return nil, wantErr
	}))

	var got *fakeLogger
	err := c.Resolve(&got)
	assert.ErrorIs(t, err, wantErr)
}

func TestClearRemovesRegistrations(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&fakeLogger{name: "a"}))
	c.Clear()

	var got *fakeLogger
	assert.Error(t, c.Resolve(&got))
}

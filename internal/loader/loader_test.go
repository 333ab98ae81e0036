package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Loaded(t *testing.T) {
	task := Start(context.Background(), func(context.Context) ([]string, error) {
		return []string{"wow", "wowt"}, nil
	})

	st := task.Wait(context.Background())
	require.Equal(t, Loaded, st.Phase)
	assert.Equal(t, []string{"wow", "wowt"}, st.Data)
	assert.NoError(t, st.Err)
	assert.False(t, task.Loading())
}

func TestTask_Failed(t *testing.T) {
	boom := errors.New("boom")
	task := Start(context.Background(), func(context.Context) (int, error) {
		return 0, boom
	})

	st := task.Wait(context.Background())
	assert.Equal(t, Failed, st.Phase)
	assert.ErrorIs(t, st.Err, boom)
}

func TestTask_LoadingUntilFetchReturns(t *testing.T) {
	release := make(chan struct{})
	task := Start(context.Background(), func(context.Context) (string, error) {
		<-release
		return "ok", nil
	})

	assert.True(t, task.Loading())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st := task.Wait(ctx)
	assert.Equal(t, Loading, st.Phase)

	close(release)
	<-task.Done()
	assert.Equal(t, Loaded, task.State().Phase)
}

func TestTask_RunsOnce(t *testing.T) {
	calls := 0
	task := Start(context.Background(), func(context.Context) (int, error) {
		calls++
		return calls, nil
	})
	<-task.Done()
	_ = task.Wait(context.Background())
	_ = task.State()
	assert.Equal(t, 1, calls)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "failed", Failed.String())
}

package service

import (
	"context"
	"testing"

	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSignUpListTaskFlow(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	store := newMemStore()

	userSvc := NewUserService(users, users, &fakeIssuer{}, UserConfig{})
	listSvc := NewListService(store, taskRepo{store}, zap.NewNop())
	taskSvc := NewTaskService(store, taskRepo{store})

	u, _, err := userSvc.SignUp(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	list, err := listSvc.Create(ctx, u.ID, "Groceries")
	require.NoError(t, err)

	_, err = taskSvc.Create(ctx, u.ID, list.ID, "Milk")
	require.NoError(t, err)

	tasks, err := taskSvc.Tasks(ctx, u.ID, list.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Milk", tasks[0].Title)

	_, err = listSvc.Delete(ctx, u.ID, list.ID)
	require.NoError(t, err)
	listSvc.Wait()

	remaining, err := taskRepo{store}.ListByList(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = taskSvc.Tasks(ctx, u.ID, list.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDeleteAndRestoreClass(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	svc := NewClassService(db)
	ctx := context.Background()
	cls := f.class("Yoga sáng", 12)
	f.enroll(f.member("alice"), cls)

	before, err := svc.Get(ctx, cls.ID)
	require.NoError(t, err)

	_, err = svc.SoftDelete(ctx, cls.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, cls.ID)
	require.Error(t, err)
	assert.Equal(t, 404, AsError(err).Status())

	_, err = svc.SoftDelete(ctx, cls.ID)
	require.Error(t, err)
	assert.Equal(t, 400, AsError(err).Status())

	restored, err := svc.Restore(ctx, cls.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)
	assert.Equal(t, before.Name, restored.Name)
	assert.Equal(t, before.MaxMembers, restored.MaxMembers)
	assert.Equal(t, before.CurrentCapacity, restored.CurrentCapacity)
	assert.Equal(t, before.TrainerID, restored.TrainerID)
	assert.True(t, before.UpdatedAt.Equal(restored.UpdatedAt))

	_, err = svc.Restore(ctx, cls.ID)
	require.Error(t, err)
	assert.Equal(t, 400, AsError(err).Status())
}

func TestListDeletedClasses(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	svc := NewClassService(db)
	ctx := context.Background()
	f.class("Gym", 10)
	old := f.class("Old", 10)
	_, err := svc.SoftDelete(ctx, old.ID)
	require.NoError(t, err)

	list, total, err := svc.List(ctx, ClassFilter{}, pageOf(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Gym", list[0].Name)

	list, total, err = svc.List(ctx, ClassFilter{OnlyDeleted: true}, pageOf(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Old", list[0].Name)
}

func TestUpdateClassNeverTouchesCapacity(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	svc := NewClassService(db)
	ctx := context.Background()
	cls := f.class("HIIT", 5)
	f.enroll(f.member("a"), cls)
	f.enroll(f.member("b"), cls)

	tooSmall := 1
	_, err := svc.Update(ctx, cls.ID, ClassPatch{MaxMembers: &tooSmall})
	require.Error(t, err)
	assert.Equal(t, "max_members", AsError(err).Field)

	bigger := 8
	name := "HIIT nâng cao"
	updated, err := svc.Update(ctx, cls.ID, ClassPatch{MaxMembers: &bigger, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.MaxMembers)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 2, updated.CurrentCapacity)
}

func TestCreateClassValidatesTrainer(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	svc := NewClassService(db)

	_, err := svc.Create(context.Background(), ClassInput{Name: "Yoga", TrainerID: f.admin.ID, MaxMembers: 5})
	require.Error(t, err)
	assert.Equal(t, "trainer", AsError(err).Field)

	cls, err := svc.Create(context.Background(), ClassInput{Name: "Yoga", TrainerID: f.trainer.ID, MaxMembers: 5})
	require.NoError(t, err)
	assert.Zero(t, cls.CurrentCapacity)
}

func TestEnrolledClassIDs(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	yoga := f.class("Yoga", 5)
	gym := f.class("Gym", 5)
	alice := f.member("alice")
	f.enroll(alice, yoga)

	got, err := NewClassService(db).EnrolledClassIDs(context.Background(), alice.ID, []uuid.UUID{yoga.ID, gym.ID})
	require.NoError(t, err)
	assert.True(t, got[yoga.ID])
	assert.False(t, got[gym.ID])
}

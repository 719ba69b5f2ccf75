package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/pkg/database"
)

func setupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// seedUsers 创建 tester1(111) 与 tester2(222)
func seedUsers(t testing.TB, db *gorm.DB) {
	t.Helper()
	users := []model.User{
		{ID: 111, Username: "tester1", Email: "tester1@test.com", Password: "HASHED_PASSWORD"},
		{ID: 222, Username: "tester2", Email: "tester2@test.com", Password: "HASHED_PASSWORD"},
	}
	require.NoError(t, db.Create(&users).Error)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "testuser", Email: "test@test.com", Password: "HASHED_PASSWORD"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	got, err := repo.GetByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, fmt.Sprintf("<User #%d: testuser, test@test.com>", u.ID), got.String())

	_, err = repo.GetByID(ctx, 99999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &model.User{Username: "tester1", Email: "other@test.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestUserRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	require.NoError(t, db.Create(&model.User{ID: 333, Username: "someone", Email: "s@test.com", Password: "x"}).Error)
	repo := NewUserRepository(db)
	ctx := context.Background()

	all, err := repo.Search(ctx, "", 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := repo.Search(ctx, "test", 0, 100)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "tester1", found[0].Username)
	assert.Equal(t, "tester2", found[1].Username)
}

func TestMessageRepository_RequiresExistingOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	err := repo.Create(context.Background(), &model.Message{Text: "orphan", UserID: 424242, Timestamp: time.Now()})
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestMessageRepository_OwnedMessages(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Message{Text: "test", UserID: 111, Timestamp: time.Now()}))

	msgs, err := repo.ListByUser(ctx, 111, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "test", msgs[0].Text)

	cnt, err := repo.CountByUser(ctx, 222)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	require.NoError(t, repo.Delete(ctx, msgs[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, msgs[0].ID), ErrNotFound)
}

func TestLikeRepository_ToggleRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	require.NoError(t, db.Create(&model.Message{ID: 9999, Text: "This is liked", UserID: 111, Timestamp: time.Now()}).Error)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	res, err := repo.Toggle(ctx, 222, 9999)
	require.NoError(t, err)
	assert.Equal(t, Added, res)

	likes, err := repo.ListByMessage(ctx, 9999)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, uint(222), likes[0].UserID)

	res, err = repo.Toggle(ctx, 222, 9999)
	require.NoError(t, err)
	assert.Equal(t, Removed, res)

	likes, err = repo.ListByMessage(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestFollowRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, 111, 222)
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := repo.Toggle(ctx, 111, 222)
	require.NoError(t, err)
	assert.Equal(t, Added, res)

	ok, err = repo.Exists(ctx, 111, 222)
	require.NoError(t, err)
	assert.True(t, ok)

	followers, err := repo.ListFollowers(ctx, 222, 0, 10)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, uint(111), followers[0].FollowerID)

	res, err = repo.Toggle(ctx, 111, 222)
	require.NoError(t, err)
	assert.Equal(t, Removed, res)

	cnt, err := repo.CountFollowers(ctx, 222)
	require.NoError(t, err)
	assert.Zero(t, cnt)
}

func TestFollowRepository_CreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, 222, 111))
	require.NoError(t, repo.Create(ctx, 222, 111))

	cnt, err := repo.CountFollowings(ctx, 222)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)
}

func TestToggle_ConcurrentSamePair(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	require.NoError(t, db.Create(&model.Message{ID: 9999, Text: "race", UserID: 111, Timestamp: time.Now()}).Error)
	repo := NewLikeRepository(db)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Toggle(context.Background(), 222, 9999); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("toggle: %v", err)
	}

	// 偶数次切换回到初始状态
	ok, err := repo.Exists(context.Background(), 222, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()
	users := NewUserRepository(db)
	msgs := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	follows := NewFollowRepository(db)

	require.NoError(t, msgs.Create(ctx, &model.Message{ID: 1, Text: "by 111", UserID: 111, Timestamp: time.Now()}))
	require.NoError(t, msgs.Create(ctx, &model.Message{ID: 2, Text: "by 222", UserID: 222, Timestamp: time.Now()}))
	_, err := likes.Toggle(ctx, 222, 1)
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, 111, 2)
	require.NoError(t, err)
	require.NoError(t, follows.Create(ctx, 111, 222))
	require.NoError(t, follows.Create(ctx, 222, 111))

	require.NoError(t, users.Delete(ctx, 111))

	_, err = users.GetByID(ctx, 111)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = msgs.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	total, err := likes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	cnt, err := follows.CountFollowers(ctx, 222)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	assert.ErrorIs(t, users.Delete(ctx, 111), ErrNotFound)
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, ErrDuplicateKey},
		{"pg unique", &pgconn.PgError{Code: "23505"}, ErrDuplicateKey},
		{"pg not null", &pgconn.PgError{Code: "23502"}, ErrConstraintViolation},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrDuplicateKey},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, ErrConstraintViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tc.err), tc.want)
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, translate(plain))
	assert.NoError(t, translate(nil))
	assert.False(t, IsDuplicate(translate(&pgconn.PgError{Code: "23502"})))
}

func TestListByIDs_KeepsInputOrder(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()
	users := NewUserRepository(db)
	messages := NewMessageRepository(db)

	got, err := users.ListByIDs(ctx, []uint{222, 404, 111})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []uint{222, 111}, []uint{got[0].ID, got[1].ID})

	now := time.Now()
	older := &model.Message{Text: "older", UserID: 111, Timestamp: now.Add(-time.Hour)}
	newer := &model.Message{Text: "newer", UserID: 111, Timestamp: now}
	require.NoError(t, messages.Create(ctx, older))
	require.NoError(t, messages.Create(ctx, newer))

	msgs, err := messages.ListByIDs(ctx, []uint{older.ID, newer.ID})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "older", msgs[0].Text)
	assert.Equal(t, "newer", msgs[1].Text)
}

func TestLikeRepository_LikerIDsByAuthor(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()
	messages := NewMessageRepository(db)
	likes := NewLikeRepository(db)

	m1 := &model.Message{Text: "one", UserID: 111, Timestamp: time.Now()}
	m2 := &model.Message{Text: "two", UserID: 111, Timestamp: time.Now()}
	require.NoError(t, messages.Create(ctx, m1))
	require.NoError(t, messages.Create(ctx, m2))
	for _, m := range []*model.Message{m1, m2} {
		_, err := likes.Toggle(ctx, 222, m.ID)
		require.NoError(t, err)
	}

	ids, err := likes.LikerIDsByAuthor(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, []uint{222}, ids)

	ids, err = likes.LikerIDsByAuthor(ctx, 222)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

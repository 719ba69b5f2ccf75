package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/warbler/config"
	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// pct 取分位数
func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// run 用 workers 个协程执行 n 次 op，返回每次耗时
func run(n, workers int, op func(i int)) ([]time.Duration, time.Duration) {
	if workers > n {
		workers = n
	}
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	var (
		mu   sync.Mutex
		recs = make([]time.Duration, 0, n)
		wg   sync.WaitGroup
	)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				st := time.Now()
				op(i)
				d := time.Since(st)
				mu.Lock()
				recs = append(recs, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return recs, time.Since(t0)
}

func report(name string, recs []time.Duration, total time.Duration) {
	n := len(recs)
	if n == 0 {
		return
	}
	fmt.Printf("%s total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		name, total, total/time.Duration(n), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
}

// 压测关注/点赞切换：N 个用户并发关注同一个热点用户，再并发给它的消息点赞，
// 最后把同一条边反复切换，确认奇偶次数后的状态。
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	users := repository.NewUserRepository(db)
	messages := repository.NewMessageRepository(db)
	follows := repository.NewFollowRepository(db)
	likes := repository.NewLikeRepository(db)
	relSvc := service.NewRelationshipService(users, follows, nil)
	likeSvc := service.NewLikeService(users, messages, likes, nil)
	msgSvc := service.NewMessageService(messages, follows, likes, nil)

	ctx := context.Background()
	N := envInt("N", 2000)
	CONC := envInt("CONC", 8)
	FLIPS := envInt("FLIPS", 101)

	hash := must(auth.HashPassword("password"))
	tag := uuid.New().String()[:8]
	celeb := &model.User{Username: "celeb-" + tag, Email: "celeb-" + tag + "@example.com", Password: hash, ImageURL: model.DefaultImageURL}
	if err := users.Create(ctx, celeb); err != nil {
		panic(err)
	}
	fans := make([]*model.User, N)
	batch := make([]model.User, 0, 500)
	flush := func() {
		if len(batch) > 0 {
			if err := db.CreateInBatches(&batch, len(batch)).Error; err != nil {
				panic(err)
			}
			batch = batch[:0]
		}
	}
	for i := 0; i < N; i++ {
		name := fmt.Sprintf("fan-%s-%d", tag, i)
		batch = append(batch, model.User{Username: name, Email: name + "@example.com", Password: hash, ImageURL: model.DefaultImageURL})
		if len(batch) == cap(batch) {
			flush()
		}
	}
	flush()
	var seeded []*model.User
	if err := db.Where("username LIKE ?", "fan-"+tag+"-%").Order("id").Find(&seeded).Error; err != nil {
		panic(err)
	}
	copy(fans, seeded)

	celebID := auth.Identity{UserID: celeb.ID, Username: celeb.Username}
	msg := must(msgSvc.Create(ctx, celebID, service.CreateMessageInput{Text: "hello " + tag}))

	recs, total := run(N, CONC, func(i int) {
		_ = relSvc.Follow(ctx, auth.Identity{UserID: fans[i].ID, Username: fans[i].Username}, celeb.ID)
	})
	report("Follow", recs, total)

	recs, total = run(N, CONC, func(i int) {
		_, _ = likeSvc.Toggle(ctx, auth.Identity{UserID: fans[i].ID, Username: fans[i].Username}, msg.ID)
	})
	report("Like toggle", recs, total)

	// 同一条边的并发切换
	flipper := auth.Identity{UserID: fans[0].ID, Username: fans[0].Username}
	recs, total = run(FLIPS, CONC, func(int) {
		_, _ = relSvc.ToggleFollow(ctx, flipper, celeb.ID)
	})
	report("Contended toggle", recs, total)

	followers := must(follows.CountFollowers(ctx, celeb.ID))
	likeCount := len(must(likes.ListByMessage(ctx, msg.ID)))
	exists := must(follows.Exists(ctx, fans[0].ID, celeb.ID))
	fmt.Printf("N=%d, CONC=%d, FLIPS=%d\n", N, CONC, FLIPS)
	fmt.Printf("followers=%d likes=%d contended edge present=%v (expect %v)\n", followers, likeCount, exists, FLIPS%2 == 0)
}

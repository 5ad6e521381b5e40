package main

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
)

// benchCmd 生成关注关系与帖子后测量列表/关注流的读延迟
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Seed synthetic data and measure listing and feed latency",
	RunE:  runBench,
}

func init() {
	f := benchCmd.Flags()
	f.Int("authors", 50, "number of authors")
	f.Int("followers", 1000, "number of readers following every author")
	f.Int("posts", 20, "posts per author")
	f.Int("reads", 200, "page reads per measurement")
	f.Int("batch", 500, "insert batch size")
}

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

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range vs {
		sum += d
	}
	return sum / time.Duration(len(vs))
}

func runBench(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	nAuthors, _ := flags.GetInt("authors")
	nFollowers, _ := flags.GetInt("followers")
	nPosts, _ := flags.GetInt("posts")
	reads, _ := flags.GetInt("reads")
	batch, _ := flags.GetInt("batch")

	if nAuthors < 1 || nFollowers < 1 || reads < 1 || batch < 1 {
		return fmt.Errorf("authors, followers, reads and batch must be positive")
	}

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	mkUsers := func(n int, kind string) ([]model.User, error) {
		users := make([]model.User, n)
		for i := range users {
			id := uuid.NewString()[:8]
			users[i] = model.User{Username: fmt.Sprintf("%s_%s", kind, id), Password: "!"}
		}
		return users, db.WithContext(ctx).CreateInBatches(&users, batch).Error
	}
	authors, err := mkUsers(nAuthors, "author")
	if err != nil {
		return fmt.Errorf("seed authors: %w", err)
	}
	readers, err := mkUsers(nFollowers, "reader")
	if err != nil {
		return fmt.Errorf("seed readers: %w", err)
	}

	follows := make([]model.Follow, 0, nAuthors*nFollowers)
	for _, r := range readers {
		for _, a := range authors {
			follows = append(follows, model.Follow{UserID: r.ID, AuthorID: a.ID})
		}
	}
	if err := db.WithContext(ctx).CreateInBatches(&follows, batch).Error; err != nil {
		return fmt.Errorf("seed follows: %w", err)
	}

	base := time.Now().Add(-time.Duration(nAuthors*nPosts) * time.Second)
	posts := make([]model.Post, 0, nAuthors*nPosts)
	for i := 0; i < nPosts; i++ {
		for j, a := range authors {
			posts = append(posts, model.Post{
				Text:      fmt.Sprintf("post %d by %s", i, a.Username),
				AuthorID:  a.ID,
				CreatedAt: base.Add(time.Duration(i*nAuthors+j) * time.Second),
			})
		}
	}
	if err := db.WithContext(ctx).Omit("Author", "Group").CreateInBatches(&posts, batch).Error; err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	postRepo := repository.NewPostRepository(db)
	postSvc := service.NewPostService(postRepo, repository.NewGroupRepository(db), repository.NewUserRepository(db),
		repository.NewCommentRepository(db), nil, cfg.Pagination.PerPage)
	rel := service.NewRelationshipService(repository.NewFollowRepository(db), postRepo, cfg.Pagination.PerPage)
	pc := cache.NewMemoryCache()

	var listing, feed, cached []time.Duration
	for i := 0; i < reads; i++ {
		page := fmt.Sprint(i%5 + 1)

		st := time.Now()
		if _, err := postSvc.ListAll(ctx, page); err != nil {
			return err
		}
		listing = append(listing, time.Since(st))

		reader := readers[i%len(readers)]
		st = time.Now()
		if _, err := rel.Feed(ctx, reader.ID, page); err != nil {
			return err
		}
		feed = append(feed, time.Since(st))

		st = time.Now()
		key := "bench:" + page
		if _, ok, _ := pc.Get(ctx, key); !ok {
			p, err := postSvc.ListAll(ctx, page)
			if err != nil {
				return err
			}
			_ = pc.Set(ctx, key, []byte(fmt.Sprint(p.Number)), cfg.Cache.IndexTTL)
		}
		cached = append(cached, time.Since(st))
	}

	cmd.Printf("authors=%d followers=%d posts/author=%d reads=%d per_page=%d\n",
		nAuthors, nFollowers, nPosts, reads, cfg.Pagination.PerPage)
	for _, m := range []struct {
		name string
		vs   []time.Duration
	}{{"index listing", listing}, {"follow feed", feed}, {"index cached", cached}} {
		cmd.Printf("%-14s avg=%v p95=%v p99=%v\n", m.name, avg(m.vs), pct(m.vs, 0.95), pct(m.vs, 0.99))
	}
	return nil
}

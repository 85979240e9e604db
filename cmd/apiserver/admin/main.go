package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"social-go/internal/config"
	"social-go/internal/logging"
	"social-go/internal/models"
	"social-go/internal/services"
	"social-go/internal/storage"
)

func usage() {
	fmt.Println("使用方法:")
	fmt.Println("  ./admin show-user <userID>       - 显示用户信息及好友数量")
	fmt.Println("  ./admin show-post <postID>       - 显示帖子、点赞数与评论数")
	fmt.Println("  ./admin reconcile [--dry-run]    - 清理父记录已删除的评论、回复和点赞")
}

func main() {
	// 简单命令行参数解析
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	logger := logging.MustNew(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	db, err := storage.InitDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("无法连接数据库", zap.Error(err))
	}
	repos := storage.NewGormRepositories(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// 执行指定的命令
	switch os.Args[1] {
	case "show-user":
		showUser(ctx, repos, requireID())
	case "show-post":
		feed := services.NewFeedService(repos, services.NewLikeLedger(repos, logger), logger)
		showPost(ctx, feed, requireID())
	case "reconcile":
		dryRun := len(os.Args) > 2 && os.Args[2] == "--dry-run"
		report, err := storage.ReconcileOrphans(ctx, db, dryRun)
		if err != nil {
			logger.Fatal("清理孤立记录失败", zap.Error(err))
		}
		verb := "已删除"
		if dryRun {
			verb = "待删除"
		}
		fmt.Printf("%s 孤立评论: %d\n", verb, report.OrphanComments)
		fmt.Printf("%s 孤立回复: %d\n", verb, report.OrphanReplies)
		for _, kind := range []models.ContentKind{models.KindPost, models.KindComment, models.KindReply} {
			fmt.Printf("%s 孤立点赞 (%s): %d\n", verb, kind, report.OrphanLikes[kind])
		}
	default:
		usage()
		log.Fatalf("未知命令: %s", os.Args[1])
	}
}

func requireID() string {
	if len(os.Args) < 3 {
		log.Fatalf("需要指定ID")
	}
	id := os.Args[2]
	if !models.IsValidID(id) {
		log.Fatalf("无效的ID: %s", id)
	}
	return id
}

func showUser(ctx context.Context, repos *storage.Repositories, userID string) {
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		log.Fatalf("查找用户失败: %v", err)
	}
	friends, err := repos.Friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		log.Fatalf("获取好友列表失败: %v", err)
	}

	fmt.Printf("用户 %s 信息:\n", userID)
	fmt.Println("--------------------------------------")
	fmt.Printf("用户名: %s\n", user.Username)
	fmt.Printf("姓名: %s %s\n", user.FirstName, user.LastName)
	fmt.Printf("注册时间: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("第三方登录: %v\n", user.OAuthID != nil)
	fmt.Printf("好友数量: %d\n", len(friends))
}

func showPost(ctx context.Context, feed services.FeedService, postID string) {
	post, err := feed.GetPostView(ctx, "", postID)
	if err != nil {
		log.Fatalf("获取帖子失败: %v", err)
	}

	fmt.Printf("帖子 %s 信息:\n", postID)
	fmt.Println("--------------------------------------")
	fmt.Printf("作者: %s (%s %s)\n", post.Creator.ID, post.Creator.FirstName, post.Creator.LastName)
	fmt.Printf("内容: %s\n", post.Text)
	fmt.Printf("已编辑: %v\n", post.Edited)
	fmt.Printf("创建时间: %s\n", post.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("图片数量: %d\n", len(post.Media))
	fmt.Printf("点赞数: %d, 评论数: %d\n", post.LikeCount, post.CommentCount)
}

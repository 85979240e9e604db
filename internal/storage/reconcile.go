package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// ReconcileReport counts rows whose parent no longer exists.
type ReconcileReport struct {
	OrphanComments int64
	OrphanReplies  int64
	OrphanLikes    map[models.ContentKind]int64
}

type orphanSweep struct {
	label  string
	table  string
	column string
	// live selects the parent with alias p, joined up to its post so that a
	// row under an orphaned ancestor is itself an orphan.
	live   string
}

// predicate matches rows of the sweep's table with no live parent chain.
func (s orphanSweep) predicate() string {
	return fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s WHERE p.id = %s.%s)", s.live, s.table, s.column)
}

const (
	livePost    = "posts p"
	liveComment = "comments p JOIN posts pp ON pp.id = p.post_id"
	liveReply   = "replies p JOIN comments pc ON pc.id = p.comment_id JOIN posts pp ON pp.id = pc.post_id"
)

// orphanSweeps runs parents first and likes last. Each predicate checks the
// whole ancestor chain, so a dry run counts the same rows a real run deletes.
var orphanSweeps = []orphanSweep{
	{label: "comments", table: "comments", column: "post_id", live: livePost},
	{label: "replies", table: "replies", column: "comment_id", live: liveComment},
	{label: "post_likes", table: models.LikeTables[models.KindPost], column: "subject_id", live: livePost},
	{label: "comment_likes", table: models.LikeTables[models.KindComment], column: "subject_id", live: liveComment},
	{label: "reply_likes", table: models.LikeTables[models.KindReply], column: "subject_id", live: liveReply},
}

// ReconcileOrphans finds (and unless dryRun, deletes) rows left behind by
// cascade steps that failed after their parent was removed.
func ReconcileOrphans(ctx context.Context, db *gorm.DB, dryRun bool) (*ReconcileReport, error) {
	report := &ReconcileReport{OrphanLikes: map[models.ContentKind]int64{}}

	for _, sweep := range orphanSweeps {
		where := sweep.predicate()

		var n int64
		if dryRun {
			if err := db.WithContext(ctx).Table(sweep.table).Where(where).Count(&n).Error; err != nil {
				return nil, fmt.Errorf("count orphan %s: %w", sweep.label, err)
			}
		} else {
			res := db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE %s", sweep.table, where))
			if res.Error != nil {
				return nil, fmt.Errorf("delete orphan %s: %w", sweep.label, res.Error)
			}
			n = res.RowsAffected
		}

		switch sweep.table {
		case "comments":
			report.OrphanComments = n
		case "replies":
			report.OrphanReplies = n
		case models.LikeTables[models.KindPost]:
			report.OrphanLikes[models.KindPost] = n
		case models.LikeTables[models.KindComment]:
			report.OrphanLikes[models.KindComment] = n
		case models.LikeTables[models.KindReply]:
			report.OrphanLikes[models.KindReply] = n
		}
	}
	return report, nil
}

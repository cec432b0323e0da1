package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/models/vo"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const maxCommentRunes = 2000

// AddCommentInput 表示创建评论的输入。
type AddCommentInput struct {
	MediaID  uuid.UUID
	AuthorID uuid.UUID
	Content  string
}

// CommentService 封装评论用例：创建（含通知扇出）、owner-scoped
// 更新与删除、按媒体分页列出（应用层关联点赞数）。
type CommentService struct {
	comments      CommentRepo
	media         MediaRepo
	engagement    EngagementRepo
	notifications NotificationRepo
	txManager     txmanager.Manager
	log           *log.Helper
	newID         func() uuid.UUID
}

// NewCommentService 构造评论服务。
func NewCommentService(
	comments CommentRepo,
	media MediaRepo,
	engagement EngagementRepo,
	notifications NotificationRepo,
	tx txmanager.Manager,
	logger log.Logger,
) *CommentService {
	return &CommentService{
		comments:      comments,
		media:         media,
		engagement:    engagement,
		notifications: notifications,
		txManager:     tx,
		log:           log.NewHelper(logger),
		newID:         uuid.New,
	}
}

// AddComment 创建评论并向媒体 owner 扇出 COMMENT 通知（自评静默）。
func (s *CommentService) AddComment(ctx context.Context, input AddCommentInput) (*vo.CommentView, error) {
	if input.AuthorID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.BadRequest(ReasonCommentInvalid, "content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentRunes {
		return nil, errors.BadRequest(ReasonCommentInvalid, fmt.Sprintf("content exceeds %d characters", maxCommentRunes))
	}

	var created *po.Comment
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		asset, repoErr := s.media.FindByID(txCtx, sess, input.MediaID)
		if repoErr != nil {
			return repoErr
		}
		if !asset.IsPublished && asset.OwnerID != input.AuthorID {
			return repositories.ErrMediaNotFound
		}

		comment, repoErr := s.comments.Create(txCtx, sess, &po.Comment{
			CommentID: s.newID(),
			MediaID:   input.MediaID,
			OwnerID:   input.AuthorID,
			Content:   content,
		})
		if repoErr != nil {
			return repoErr
		}
		created = comment

		if asset.OwnerID != input.AuthorID {
			_, repoErr = s.notifications.Insert(txCtx, sess, &po.Notification{
				NotificationID: s.newID(),
				RecipientID:    asset.OwnerID,
				SenderID:       input.AuthorID,
				Kind:           po.NotificationComment,
				MediaID:        &input.MediaID,
				CommentID:      &comment.CommentID,
			})
			if repoErr != nil {
				return fmt.Errorf("insert comment notification: %w", repoErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "add comment", err)
	}

	s.log.WithContext(ctx).Infof("AddComment: comment_id=%s media_id=%s", created.CommentID, created.MediaID)
	return vo.NewCommentView(created, 0), nil
}

// UpdateComment 更新评论内容（仅作者）。
func (s *CommentService) UpdateComment(ctx context.Context, commentID, authorID uuid.UUID, content string) (*vo.CommentView, error) {
	if authorID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest(ReasonCommentInvalid, "content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentRunes {
		return nil, errors.BadRequest(ReasonCommentInvalid, fmt.Sprintf("content exceeds %d characters", maxCommentRunes))
	}

	updated, err := s.comments.UpdateOwned(ctx, nil, commentID, authorID, content)
	if err != nil {
		return nil, s.mapError(ctx, "update comment", err)
	}

	likeCounts, err := s.engagement.CommentLikeCounts(ctx, nil, []uuid.UUID{commentID})
	if err != nil {
		return nil, s.mapError(ctx, "load comment like count", err)
	}

	s.log.WithContext(ctx).Infof("UpdateComment: comment_id=%s", commentID)
	return vo.NewCommentView(updated, likeCounts[commentID]), nil
}

// DeleteComment 删除评论（仅作者）。
func (s *CommentService) DeleteComment(ctx context.Context, commentID, authorID uuid.UUID) error {
	if authorID == uuid.Nil {
		return errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	if err := s.comments.DeleteOwned(ctx, nil, commentID, authorID); err != nil {
		return s.mapError(ctx, "delete comment", err)
	}

	s.log.WithContext(ctx).Infof("DeleteComment: comment_id=%s", commentID)
	return nil
}

// ListComments 按媒体分页列出评论（新→旧），附带点赞数。
func (s *CommentService) ListComments(ctx context.Context, mediaID uuid.UUID, page, size int) (*vo.CommentPage, error) {
	page, size = normalizePage(page, size)

	comments, total, err := s.comments.ListByMedia(ctx, nil, mediaID, size, (page-1)*size)
	if err != nil {
		return nil, s.mapError(ctx, "list comments", err)
	}

	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentID)
	}
	likeCounts, err := s.engagement.CommentLikeCounts(ctx, nil, ids)
	if err != nil {
		return nil, s.mapError(ctx, "load comment like counts", err)
	}

	items := make([]*vo.CommentView, 0, len(comments))
	for _, c := range comments {
		items = append(items, vo.NewCommentView(c, likeCounts[c.CommentID]))
	}
	return &vo.CommentPage{Items: items, Page: page, Size: size, Total: total}, nil
}

func (s *CommentService) mapError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repositories.ErrMediaNotFound) {
		return ErrMediaNotFound
	}
	if errors.Is(err, repositories.ErrCommentNotFound) {
		return ErrCommentNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: %v", op, err)
	return errors.InternalServer(ReasonMutationFailed, "comment operation failed").WithCause(fmt.Errorf("%s: %w", op, err))
}

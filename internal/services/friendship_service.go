package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/models"
	"social-go/internal/storage"
)

const (
	DefaultRecommendLimit = 10
	MaxRecommendLimit     = 50
)

// FriendshipService manages friend requests and the symmetric friend list.
type FriendshipService interface {
	SendFriendRequest(ctx context.Context, senderID, receiverID string) error
	AcceptFriendRequest(ctx context.Context, receiverID, senderID string) error
	CancelFriendRequest(ctx context.Context, senderID, receiverID string) error
	DeclineFriendRequest(ctx context.Context, receiverID, senderID string) error
	RemoveFriend(ctx context.Context, userID, otherID string) error
	RecommendFriends(ctx context.Context, userID string, limit int) ([]models.UserBasicInfo, error)
	ListFriendRequests(ctx context.Context, userID string) ([]models.FriendRequestWithSender, error)
	ListFriends(ctx context.Context, userID string) ([]models.UserBasicInfo, error)
}

type friendshipService struct {
	repos  *storage.Repositories
	logger *zap.Logger
}

// NewFriendshipService creates a new FriendshipService instance.
func NewFriendshipService(repos *storage.Repositories, logger *zap.Logger) FriendshipService {
	return &friendshipService{repos: repos, logger: logger}
}

func (s *friendshipService) userExists(ctx context.Context, id string) (bool, error) {
	exists, err := s.repos.Users.Exists(ctx, id)
	if err != nil {
		return false, apperrors.Internal("查询用户失败", err)
	}
	return exists, nil
}

// SendFriendRequest adds senderID to receiverID's pending list.
func (s *friendshipService) SendFriendRequest(ctx context.Context, senderID, receiverID string) error {
	if err := requireID(receiverID, "userId"); err != nil {
		return err
	}
	if senderID == receiverID {
		return apperrors.Conflict("Cant send friend request to yourself")
	}

	exists, err := s.userExists(ctx, receiverID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFound("User not found")
	}

	areFriends, err := s.repos.Friendships.AreUsersFriends(ctx, senderID, receiverID)
	if err != nil {
		return apperrors.Internal("检查好友关系时出错", err)
	}
	if areFriends {
		return apperrors.Conflict("You are already friends with this user")
	}

	pending, err := s.repos.FriendRequests.Exists(ctx, receiverID, senderID)
	if err != nil {
		return apperrors.Internal("检查现有请求时出错", err)
	}
	if pending {
		return apperrors.Conflict("User already have a friend request from you")
	}
	crossed, err := s.repos.FriendRequests.Exists(ctx, senderID, receiverID)
	if err != nil {
		return apperrors.Internal("检查现有请求时出错", err)
	}
	if crossed {
		return apperrors.Conflict("You already have a friend request from this user")
	}

	err = s.repos.FriendRequests.Create(ctx, &models.FriendRequest{ReceiverID: receiverID, SenderID: senderID})
	if errors.Is(err, storage.ErrDuplicatedKey) {
		return apperrors.Conflict("User already have a friend request from you")
	}
	if err != nil {
		return apperrors.Internal("创建好友请求失败", err)
	}
	s.logger.Debug("friend request sent", zap.String("sender", senderID), zap.String("receiver", receiverID))
	return nil
}

// AcceptFriendRequest turns senderID's pending request into a friendship.
func (s *friendshipService) AcceptFriendRequest(ctx context.Context, receiverID, senderID string) error {
	if err := requireID(senderID, "requestId"); err != nil {
		return err
	}
	exists, err := s.userExists(ctx, senderID)
	if err != nil {
		return err
	}
	if !exists {
		// sender account is gone; drop the stale request
		if _, err := s.repos.FriendRequests.Delete(ctx, receiverID, senderID); err != nil {
			s.logger.Warn("清理失效好友请求失败", zap.String("receiver", receiverID), zap.String("sender", senderID), zap.Error(err))
		}
		return apperrors.NotFound("User not found")
	}

	accepted, err := s.repos.FriendRequests.Accept(ctx, receiverID, senderID)
	if err != nil {
		return apperrors.Internal("处理好友请求失败", err)
	}
	if !accepted {
		return apperrors.NotFound("Friend request not found")
	}
	return nil
}

// CancelFriendRequest withdraws senderID's request to receiverID. Withdrawing
// a request that does not exist succeeds.
func (s *friendshipService) CancelFriendRequest(ctx context.Context, senderID, receiverID string) error {
	if err := requireID(receiverID, "requestId"); err != nil {
		return err
	}
	exists, err := s.userExists(ctx, receiverID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFound("User not found")
	}
	if _, err := s.repos.FriendRequests.Delete(ctx, receiverID, senderID); err != nil {
		return apperrors.Internal("取消好友请求失败", err)
	}
	return nil
}

func (s *friendshipService) DeclineFriendRequest(ctx context.Context, receiverID, senderID string) error {
	if err := requireID(senderID, "requestId"); err != nil {
		return err
	}
	n, err := s.repos.FriendRequests.Delete(ctx, receiverID, senderID)
	if err != nil {
		return apperrors.Internal("拒绝好友请求失败", err)
	}
	if n == 0 {
		return apperrors.NotFound("Friend request not found")
	}
	return nil
}

// RemoveFriend deletes the friendship; both friend lists change at once.
func (s *friendshipService) RemoveFriend(ctx context.Context, userID, otherID string) error {
	if err := requireID(otherID, "requestId"); err != nil {
		return err
	}
	exists, err := s.userExists(ctx, otherID)
	if err != nil {
		return err
	}
	n, err := s.repos.Friendships.Delete(ctx, userID, otherID)
	if err != nil {
		return apperrors.Internal("删除好友失败", err)
	}
	if !exists {
		return apperrors.NotFound("User not found")
	}
	if n == 0 {
		return apperrors.NotFound("You are not friends with this user")
	}
	return nil
}

// RecommendFriends lists users who are neither friends nor on either side of
// a pending request. limit 0 selects DefaultRecommendLimit.
func (s *friendshipService) RecommendFriends(ctx context.Context, userID string, limit int) ([]models.UserBasicInfo, error) {
	if limit == 0 {
		limit = DefaultRecommendLimit
	}
	if limit < 1 || limit > MaxRecommendLimit {
		return nil, apperrors.ValidationFields("Invalid limit", map[string]string{"limit": fmt.Sprintf("must be between 1 and %d", MaxRecommendLimit)})
	}

	friends, err := s.repos.Friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("查询好友列表失败", err)
	}
	pending, err := s.repos.FriendRequests.ListCounterpartIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("查询好友请求失败", err)
	}
	exclude := make([]string, 0, len(friends)+len(pending)+1)
	exclude = append(exclude, userID)
	exclude = append(exclude, friends...)
	exclude = append(exclude, pending...)

	users, err := s.repos.Users.ListExcluding(ctx, dedupe(exclude), limit)
	if err != nil {
		return nil, apperrors.Internal("查询推荐好友失败", err)
	}
	return users, nil
}

// ListFriendRequests returns userID's pending requests, newest first, each
// joined with the sender summary.
func (s *friendshipService) ListFriendRequests(ctx context.Context, userID string) ([]models.FriendRequestWithSender, error) {
	requests, err := s.repos.FriendRequests.ListForReceiver(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("获取待处理请求失败", err)
	}
	out := make([]models.FriendRequestWithSender, 0, len(requests))
	if len(requests) == 0 {
		return out, nil
	}

	senderIDs := make([]string, len(requests))
	for i, r := range requests {
		senderIDs[i] = r.SenderID
	}
	infos, err := s.repos.Users.GetMultipleBasicInfoByIDs(ctx, senderIDs)
	if err != nil {
		return nil, apperrors.Internal("查询发送者信息失败", err)
	}
	byID := make(map[string]models.UserBasicInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	for _, r := range requests {
		item := models.FriendRequestWithSender{FriendRequest: r}
		if info, ok := byID[r.SenderID]; ok {
			item.Sender = &info
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]models.UserBasicInfo, error) {
	if err := requireID(userID, "userId"); err != nil {
		return nil, err
	}
	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("User not found")
	}
	ids, err := s.repos.Friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("获取好友列表失败", err)
	}
	if len(ids) == 0 {
		return []models.UserBasicInfo{}, nil
	}
	friends, err := s.repos.Users.GetMultipleBasicInfoByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("获取好友列表失败", err)
	}
	return friends, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/noteduco342/om-receipts/internal/metrics"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/repository"
	"github.com/noteduco342/om-receipts/internal/validation"
)

const (
	FlagRead = "read"

	FlagOpAdd = "add"
)

type MessageService struct {
	messageRepo        repository.MessageRepositoryInterface
	groupRepo          repository.GroupRepositoryInterface
	userRepo           repository.UserRepositoryInterface
	readMarkRepo       repository.ReadMarkRepositoryInterface
	groupReadStateRepo repository.GroupReadStateRepositoryInterface
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	readMarkRepo repository.ReadMarkRepositoryInterface,
	groupReadStateRepo repository.GroupReadStateRepositoryInterface,
) *MessageService {
	return &MessageService{
		messageRepo:        messageRepo,
		groupRepo:          groupRepo,
		userRepo:           userRepo,
		readMarkRepo:       readMarkRepo,
		groupReadStateRepo: groupReadStateRepo,
	}
}

type SendMessageInput struct {
	ClientID    string             `json:"client_id"`
	RecipientID *uint              `json:"recipient_id"`
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"message_type"`
}

// AccessMessage loads a message the user is allowed to view.
//
// Direct messages are visible to their two participants. Group messages
// are visible to members, and to everyone when the group is public.
// Anything else, including a missing message, is ErrInvalidMessage.
func (s *MessageService) AccessMessage(ctx context.Context, userID, messageID uint) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidMessage
		}
		return nil, fmt.Errorf("find message %d: %w", messageID, err)
	}

	if message.IsDirect() {
		if message.SenderID == userID || (message.RecipientID != nil && *message.RecipientID == userID) {
			return message, nil
		}
		return nil, ErrInvalidMessage
	}

	groupID := *message.GroupID
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership of group %d: %w", groupID, err)
	}
	if isMember {
		return message, nil
	}

	private, err := s.groupRepo.IsPrivate(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidMessage
		}
		return nil, fmt.Errorf("check visibility of group %d: %w", groupID, err)
	}
	if private {
		return nil, ErrInvalidMessage
	}
	return message, nil
}

func (s *MessageService) GetMessage(ctx context.Context, userID, messageID uint) (*models.Message, error) {
	return s.AccessMessage(ctx, userID, messageID)
}

func (s *MessageService) SendMessage(ctx context.Context, senderID uint, input SendMessageInput) (*models.Message, error) {
	if input.RecipientID == nil || *input.RecipientID == 0 {
		return nil, ErrInvalidRecipient
	}
	recipient, err := s.userRepo.FindByID(*input.RecipientID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidRecipient
		}
		return nil, err
	}
	if !recipient.IsActive {
		return nil, ErrInvalidRecipient
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: input.RecipientID,
	}
	return s.create(ctx, message, input, "direct")
}

func (s *MessageService) SendGroupMessage(ctx context.Context, senderID, groupID uint, input SendMessageInput) (*models.Message, error) {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotGroupMember
	}

	message := &models.Message{
		SenderID: senderID,
		GroupID:  &groupID,
	}
	return s.create(ctx, message, input, "group")
}

// create persists the message, reusing an existing row when the sender
// retries with the same client id.
func (s *MessageService) create(ctx context.Context, message *models.Message, input SendMessageInput, kind string) (*models.Message, error) {
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	} else if existing, err := s.messageRepo.FindByClientID(clientID, message.SenderID); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	message.ClientID = clientID
	message.Content = validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	message.MessageType = input.MessageType
	if message.MessageType == "" {
		message.MessageType = models.TextMessage
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	metrics.MessagesSent.WithLabelValues(kind).Inc()

	// The sender has seen their own message.
	if err := s.readMarkRepo.MarkRead(ctx, message.SenderID, []uint{message.ID}); err != nil {
		return nil, fmt.Errorf("mark sent message read: %w", err)
	}

	// Load sender info
	return s.messageRepo.FindByID(ctx, message.ID)
}

// UpdateReadFlags applies a flag change for the user to every listed
// message. Either all messages are accessible and the change is applied,
// or nothing is written.
func (s *MessageService) UpdateReadFlags(ctx context.Context, userID uint, messageIDs []uint, op, flag string) ([]uint, error) {
	if flag != FlagRead {
		return nil, ErrUnsupportedFlag
	}
	// Read marks are permanent, so only "add" is accepted.
	if op != FlagOpAdd {
		return nil, ErrUnsupportedFlagOp
	}

	ids := uniqueIDs(messageIDs)
	for _, id := range ids {
		if _, err := s.AccessMessage(ctx, userID, id); err != nil {
			return nil, err
		}
	}

	if err := s.readMarkRepo.MarkRead(ctx, userID, ids); err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}
	metrics.ReadMarksWritten.Add(float64(len(ids)))
	return ids, nil
}

// MarkConversationRead marks every direct message from peerID to userID read.
func (s *MessageService) MarkConversationRead(ctx context.Context, userID, peerID uint) (int, error) {
	ids, err := s.messageRepo.ListDirectIDs(peerID, userID)
	if err != nil {
		return 0, err
	}
	if err := s.readMarkRepo.MarkRead(ctx, userID, ids); err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}
	metrics.ReadMarksWritten.Add(float64(len(ids)))
	return len(ids), nil
}

// MarkGroupRead marks group messages up to upToMessageID read and advances
// the member's watermark. Zero, or an id past the newest message, means the
// newest message in the group.
func (s *MessageService) MarkGroupRead(ctx context.Context, userID, groupID, upToMessageID uint) (uint, error) {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return 0, err
	}
	if !isMember {
		return 0, ErrNotGroupMember
	}

	latest, err := s.messageRepo.GetLatestGroupMessageID(groupID)
	if err != nil {
		return 0, err
	}
	if latest == 0 {
		return 0, nil
	}
	// The watermark never moves back, so it must not pass messages that
	// do not exist yet.
	if upToMessageID == 0 || upToMessageID > latest {
		upToMessageID = latest
	}

	ids, err := s.messageRepo.ListGroupIDsUpTo(groupID, upToMessageID)
	if err != nil {
		return 0, err
	}
	if err := s.readMarkRepo.MarkRead(ctx, userID, ids); err != nil {
		return 0, fmt.Errorf("mark group read: %w", err)
	}
	metrics.ReadMarksWritten.Add(float64(len(ids)))

	if err := s.groupReadStateRepo.UpsertMonotonic(groupID, userID, upToMessageID); err != nil {
		return 0, err
	}
	return upToMessageID, nil
}

func (s *MessageService) GetGroupReadState(ctx context.Context, userID, groupID uint) (*models.GroupReadState, error) {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotGroupMember
	}

	state, err := s.groupReadStateRepo.Get(groupID, userID)
	if err != nil {
		if isNotFound(err) {
			return &models.GroupReadState{GroupID: groupID, UserID: userID}, nil
		}
		return nil, err
	}
	return state, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

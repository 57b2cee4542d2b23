package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/testutil"
)

var errStorageDown = errors.New("storage unavailable")

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, testutil.GetRecordNotFoundError()
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, testutil.GetRecordNotFoundError()
}

// FindByID returns a copy, like a row scanned from the database.
func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, testutil.GetRecordNotFoundError()
}

func (m *MockUserRepository) SetFullName(userID uint, fullName string) error {
	user, ok := m.users[userID]
	if !ok {
		return testutil.GetRecordNotFoundError()
	}
	user.FullName = fullName
	return nil
}

func (m *MockUserRepository) SetActive(userID uint, active bool) error {
	user, ok := m.users[userID]
	if !ok {
		return testutil.GetRecordNotFoundError()
	}
	user.IsActive = active
	return nil
}

func (m *MockUserRepository) SetSendReadReceipts(userID uint, enabled bool) error {
	user, ok := m.users[userID]
	if !ok {
		return testutil.GetRecordNotFoundError()
	}
	user.SendReadReceipts = enabled
	return nil
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var results []models.User
	for _, user := range m.users {
		if len(results) >= limit {
			break
		}
		if user.IsActive && strings.Contains(strings.ToLower(user.Username), query) {
			results = append(results, *user)
		}
	}
	return results, nil
}

func (m *MockUserRepository) add(username string) *models.User {
	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		Role:             models.AccountRoleUser,
		IsActive:         true,
		SendReadReceipts: true,
	}
	_ = m.Create(user)
	return user
}

// MockMessageRepository is a mock implementation of MessageRepository for testing
type MockMessageRepository struct {
	messages map[uint]*models.Message
	nextID   uint
	findErr  error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, testutil.GetRecordNotFoundError()
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, testutil.GetRecordNotFoundError()
}

func (m *MockMessageRepository) ListDirectIDs(fromUserID, toUserID uint) ([]uint, error) {
	var ids []uint
	for _, msg := range m.messages {
		if msg.SenderID == fromUserID && msg.RecipientID != nil && *msg.RecipientID == toUserID {
			ids = append(ids, msg.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockMessageRepository) ListGroupIDsUpTo(groupID uint, upToMessageID uint) ([]uint, error) {
	var ids []uint
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID && msg.ID <= upToMessageID {
			ids = append(ids, msg.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockMessageRepository) GetLatestGroupMessageID(groupID uint) (uint, error) {
	var maxID uint
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID && msg.ID > maxID {
			maxID = msg.ID
		}
	}
	return maxID, nil
}

func (m *MockMessageRepository) direct(sender, recipient *models.User) *models.Message {
	recipientID := recipient.ID
	msg := &models.Message{SenderID: sender.ID, RecipientID: &recipientID, Content: "hi"}
	_ = m.Create(msg)
	return msg
}

func (m *MockMessageRepository) group(sender *models.User, group *models.Group) *models.Message {
	groupID := group.ID
	msg := &models.Message{SenderID: sender.ID, GroupID: &groupID, Content: "hi"}
	_ = m.Create(msg)
	return msg
}

// MockGroupRepository is a mock implementation of GroupRepository for testing
type MockGroupRepository struct {
	groups      map[uint]*models.Group
	memberships map[uint]map[uint]models.GroupRole
	nextID      uint
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[uint]*models.Group),
		memberships: make(map[uint]map[uint]models.GroupRole),
		nextID:      1,
	}
}

func (m *MockGroupRepository) Create(group *models.Group) error {
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) FindByID(id uint) (*models.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, testutil.GetRecordNotFoundError()
}

func (m *MockGroupRepository) AddMember(groupID, userID uint, role models.GroupRole) error {
	if _, ok := m.memberships[groupID]; !ok {
		m.memberships[groupID] = make(map[uint]models.GroupRole)
	}
	m.memberships[groupID][userID] = role
	return nil
}

func (m *MockGroupRepository) RemoveMember(groupID, userID uint) error {
	if gm, ok := m.memberships[groupID]; ok {
		delete(gm, userID)
	}
	return nil
}

func (m *MockGroupRepository) GetMembers(groupID uint) ([]models.User, error) {
	var users []models.User
	for uid := range m.memberships[groupID] {
		users = append(users, models.User{ID: uid})
	}
	return users, nil
}

func (m *MockGroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := m.memberships[groupID][userID]
	return ok, nil
}

func (m *MockGroupRepository) IsPrivate(ctx context.Context, groupID uint) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g, ok := m.groups[groupID]
	if !ok {
		return false, testutil.GetRecordNotFoundError()
	}
	return g.IsPrivate, nil
}

func (m *MockGroupRepository) GetMemberRole(groupID, userID uint) (models.GroupRole, error) {
	if role, ok := m.memberships[groupID][userID]; ok {
		return role, nil
	}
	return "", testutil.GetRecordNotFoundError()
}

func (m *MockGroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var out []models.Group
	for gid, gm := range m.memberships {
		if _, ok := gm[userID]; ok {
			if g, ok := m.groups[gid]; ok {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (m *MockGroupRepository) add(name string, creator *models.User, private bool, members ...*models.User) *models.Group {
	group := &models.Group{Name: name, CreatorID: creator.ID, IsPrivate: private}
	_ = m.Create(group)
	_ = m.AddMember(group.ID, creator.ID, models.RoleAdmin)
	for _, u := range members {
		_ = m.AddMember(group.ID, u.ID, models.RoleMember)
	}
	return group
}

// MockReadMarkRepository keeps marks in memory and applies the same user
// filter as the SQL join, reading flags from a MockUserRepository.
type MockReadMarkRepository struct {
	users   *MockUserRepository
	marks   map[uint]map[uint]struct{} // message id -> user ids
	writes  int
	listErr error
}

func NewMockReadMarkRepository(users *MockUserRepository) *MockReadMarkRepository {
	return &MockReadMarkRepository{
		users: users,
		marks: make(map[uint]map[uint]struct{}),
	}
}

func (m *MockReadMarkRepository) MarkRead(ctx context.Context, userID uint, messageIDs []uint) error {
	for _, id := range messageIDs {
		if _, ok := m.marks[id]; !ok {
			m.marks[id] = make(map[uint]struct{})
		}
		m.marks[id][userID] = struct{}{}
		m.writes++
	}
	return nil
}

func (m *MockReadMarkRepository) ListReaderIDs(ctx context.Context, messageID uint, excludeUserID uint) ([]uint, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var ids []uint
	for uid := range m.marks[messageID] {
		if uid == excludeUserID {
			continue
		}
		user, ok := m.users.users[uid]
		if !ok || !user.IsActive || !user.SendReadReceipts {
			continue
		}
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockReadMarkRepository) hasRead(userID, messageID uint) bool {
	_, ok := m.marks[messageID][userID]
	return ok
}

// MockGroupReadStateRepository is a mock implementation for tests
type MockGroupReadStateRepository struct {
	states map[[2]uint]uint
}

func NewMockGroupReadStateRepository() *MockGroupReadStateRepository {
	return &MockGroupReadStateRepository{states: make(map[[2]uint]uint)}
}

func (m *MockGroupReadStateRepository) EnsureForMember(groupID, userID uint) error {
	key := [2]uint{groupID, userID}
	if _, ok := m.states[key]; !ok {
		m.states[key] = 0
	}
	return nil
}

func (m *MockGroupReadStateRepository) DeleteForMember(groupID, userID uint) error {
	delete(m.states, [2]uint{groupID, userID})
	return nil
}

func (m *MockGroupReadStateRepository) UpsertMonotonic(groupID, userID uint, lastReadMessageID uint) error {
	key := [2]uint{groupID, userID}
	if lastReadMessageID > m.states[key] {
		m.states[key] = lastReadMessageID
	}
	return nil
}

func (m *MockGroupReadStateRepository) Get(groupID, userID uint) (*models.GroupReadState, error) {
	last, ok := m.states[[2]uint{groupID, userID}]
	if !ok {
		return nil, testutil.GetRecordNotFoundError()
	}
	return &models.GroupReadState{GroupID: groupID, UserID: userID, LastReadMessageID: last}, nil
}

// MockAccountCache records invalidations.
type MockAccountCache struct {
	entries     map[uint]models.AccountStatus
	invalidated []uint
}

func NewMockAccountCache() *MockAccountCache {
	return &MockAccountCache{entries: make(map[uint]models.AccountStatus)}
}

func (m *MockAccountCache) Get(ctx context.Context, userID uint) (models.AccountStatus, bool) {
	s, ok := m.entries[userID]
	return s, ok
}

func (m *MockAccountCache) Set(ctx context.Context, status models.AccountStatus) error {
	m.entries[status.UserID] = status
	return nil
}

func (m *MockAccountCache) Invalidate(ctx context.Context, userID uint) error {
	delete(m.entries, userID)
	m.invalidated = append(m.invalidated, userID)
	return nil
}

// world wires every service to one set of mocks.
type world struct {
	users      *MockUserRepository
	messages   *MockMessageRepository
	groups     *MockGroupRepository
	readMarks  *MockReadMarkRepository
	readStates *MockGroupReadStateRepository
	cache      *MockAccountCache

	messageService *MessageService
	receipts       *ReadReceiptService
	userService    *UserService
	groupService   *GroupService
}

func newWorld() *world {
	w := &world{
		users:      NewMockUserRepository(),
		messages:   NewMockMessageRepository(),
		groups:     NewMockGroupRepository(),
		readStates: NewMockGroupReadStateRepository(),
		cache:      NewMockAccountCache(),
	}
	w.readMarks = NewMockReadMarkRepository(w.users)
	w.messageService = NewMessageService(w.messages, w.groups, w.users, w.readMarks, w.readStates)
	w.receipts = NewReadReceiptService(w.messageService, w.readMarks)
	w.userService = NewUserService(w.users, w.cache)
	w.groupService = NewGroupService(w.groups, w.readStates, w.users)
	return w
}

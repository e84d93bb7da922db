package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"devmatch-service/internal/models"
	"devmatch-service/internal/repositories"
)

// MemoryStore is an in-memory implementation of every repository interface,
// used by service and handler tests that need real state transitions.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	swipes   map[string][]models.SwipeRecord
	matches  map[string][]string
	chats    map[string]models.Chat
	messages map[string][]models.Message
	unread   map[string]map[string]int
	nextMsg  int64

	beforeLike func(models.SwipeRecord)
}

var (
	_ repositories.UserRepository    = (*MemoryStore)(nil)
	_ repositories.MatchRepository   = (*MemoryStore)(nil)
	_ repositories.ChatRepository    = (*MemoryStore)(nil)
	_ repositories.MessageRepository = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]models.User{},
		swipes:   map[string][]models.SwipeRecord{},
		matches:  map[string][]string{},
		chats:    map[string]models.Chat{},
		messages: map[string][]models.Message{},
		unread:   map[string]map[string]int{},
	}
}

// BeforeLike installs a hook run at the start of every CreateLike, before
// the store is locked. Tests use it to line up concurrent likes.
func (s *MemoryStore) BeforeLike(fn func(models.SwipeRecord)) {
	s.beforeLike = fn
}

// AddUser stores a user with defaults filled in and returns it.
func (s *MemoryStore) AddUser(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().Add(time.Duration(len(s.users)) * time.Millisecond)
	}
	if user.ExperienceLevel == "" {
		user.ExperienceLevel = models.ExperienceJunior
	}
	if user.LookingFor == "" {
		user.LookingFor = models.IntentNetworking
	}
	if user.Age == 0 {
		user.Age = 25
	}
	s.users[user.ID] = user
	return user
}

// Matches returns the match list of userID.
func (s *MemoryStore) Matches(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.matches[userID]...)
}

// ChatsBetween returns every chat whose participants are a and b.
func (s *MemoryStore) ChatsBetween(a, b string) []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	user1, user2 := models.OrderedPair(a, b)
	var out []models.Chat
	for _, chat := range s.chats {
		if chat.User1ID == user1 && chat.User2ID == user2 {
			out = append(out, chat)
		}
	}
	return out
}

// Unread returns the counter of userID in chatID.
func (s *MemoryStore) Unread(chatID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[chatID][userID]
}

// StoredMessages returns the raw messages of chatID.
func (s *MemoryStore) StoredMessages(chatID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages[chatID]...)
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryStore) GetSwipes(_ context.Context, userID string) ([]models.SwipeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SwipeRecord{}, s.swipes[userID]...), nil
}

func (s *MemoryStore) GetMatchProfiles(_ context.Context, userID string) ([]models.MatchProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := []models.MatchProfile{}
	for _, id := range s.matches[userID] {
		if u, ok := s.users[id]; ok {
			profiles = append(profiles, models.MatchProfile{
				ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
				ProfilePicture: u.ProfilePicture, Bio: u.Bio, Age: u.Age,
			})
		}
	}
	return profiles, nil
}

func (s *MemoryStore) GetParticipants(_ context.Context, userIDs []string) ([]models.ParticipantView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := []models.ParticipantView{}
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			views = append(views, models.ParticipantView{
				ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
				ProfilePicture: u.ProfilePicture, IsOnline: u.IsOnline, LastSeen: u.LastSeen,
			})
		}
	}
	return views, nil
}

func (s *MemoryStore) FindCandidates(_ context.Context, userID string, filter models.CandidateFilter, limit int) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	swiped := map[string]bool{userID: true}
	for _, swipe := range s.swipes[userID] {
		swiped[swipe.TargetID] = true
	}

	var pool []models.User
	for _, u := range s.users {
		if swiped[u.ID] || !matchesFilter(u, filter) {
			continue
		}
		pool = append(pool, u)
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].CreatedAt.Equal(pool[j].CreatedAt) {
			return pool[i].ID < pool[j].ID
		}
		return pool[i].CreatedAt.Before(pool[j].CreatedAt)
	})
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}

	candidates := make([]models.Candidate, 0, len(pool))
	for _, u := range pool {
		candidates = append(candidates, models.Candidate{
			ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Age: u.Age, Bio: u.Bio,
			Skills: u.Skills, ProfilePicture: u.ProfilePicture, Location: u.Location,
			Github: u.Github, Linkedin: u.Linkedin, ExperienceLevel: u.ExperienceLevel,
			JobTitle: u.JobTitle, Company: u.Company, LookingFor: u.LookingFor,
			IsOnline: u.IsOnline, LastSeen: u.LastSeen,
		})
	}
	return candidates, nil
}

func matchesFilter(u models.User, f models.CandidateFilter) bool {
	if f.MinAge > 0 && u.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && u.Age > f.MaxAge {
		return false
	}
	if f.ExperienceLevel != "" && u.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.LookingFor != "" && u.LookingFor != f.LookingFor {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(u.Location), strings.ToLower(f.Location)) {
		return false
	}
	if len(f.Skills) > 0 {
		overlap := false
		for _, want := range f.Skills {
			for _, have := range u.Skills {
				if want == have {
					overlap = true
				}
			}
		}
		if !overlap {
			return false
		}
	}
	return true
}

func (s *MemoryStore) UpdateProfile(_ context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Skills != nil {
		u.Skills = *update.Skills
	}
	if update.Location != nil {
		u.Location = *update.Location
	}
	if update.Github != nil {
		u.Github = *update.Github
	}
	if update.Linkedin != nil {
		u.Linkedin = *update.Linkedin
	}
	if update.ExperienceLevel != nil {
		u.ExperienceLevel = *update.ExperienceLevel
	}
	if update.JobTitle != nil {
		u.JobTitle = *update.JobTitle
	}
	if update.Company != nil {
		u.Company = *update.Company
	}
	if update.LookingFor != nil {
		u.LookingFor = *update.LookingFor
	}
	u.UpdatedAt = time.Now()
	s.users[userID] = u
	return u, nil
}

func (s *MemoryStore) SetProfilePicture(_ context.Context, userID string, url string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	u.ProfilePicture = url
	s.users[userID] = u
	return u, nil
}

func (s *MemoryStore) SetOnlineStatus(_ context.Context, userID string, online bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsOnline = online
	u.LastSeen = at
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) CreateSwipe(_ context.Context, swipe models.SwipeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSwipe(swipe)
}

func (s *MemoryStore) insertSwipe(swipe models.SwipeRecord) error {
	for _, existing := range s.swipes[swipe.UserID] {
		if existing.TargetID == swipe.TargetID {
			return repositories.ErrSwipeExists
		}
	}
	s.swipes[swipe.UserID] = append(s.swipes[swipe.UserID], swipe)
	return nil
}

func (s *MemoryStore) CreateLike(_ context.Context, swipe models.SwipeRecord, chatID string) (*models.Chat, error) {
	if s.beforeLike != nil {
		s.beforeLike(swipe)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertSwipe(swipe); err != nil {
		return nil, err
	}
	likedBack := false
	for _, theirs := range s.swipes[swipe.TargetID] {
		if theirs.TargetID == swipe.UserID && theirs.Action == models.SwipeLike {
			likedBack = true
		}
	}
	if !likedBack {
		return nil, nil
	}
	s.addMatch(swipe.UserID, swipe.TargetID)
	s.addMatch(swipe.TargetID, swipe.UserID)

	user1, user2 := models.OrderedPair(swipe.UserID, swipe.TargetID)
	for _, chat := range s.chats {
		if chat.User1ID == user1 && chat.User2ID == user2 {
			return &chat, nil
		}
	}
	chat := models.Chat{ID: chatID, User1ID: user1, User2ID: user2, CreatedAt: swipe.SwipedAt, UpdatedAt: swipe.SwipedAt}
	s.chats[chatID] = chat
	return &chat, nil
}

func (s *MemoryStore) addMatch(userID, matchID string) {
	for _, id := range s.matches[userID] {
		if id == matchID {
			return
		}
	}
	s.matches[userID] = append(s.matches[userID], matchID)
}

func (s *MemoryStore) GetChat(_ context.Context, chatID string) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return models.Chat{}, repositories.ErrChatNotFound
	}
	return chat, nil
}

func (s *MemoryStore) ListChats(_ context.Context, userID string) ([]models.ChatListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listings := []models.ChatListing{}
	for _, chat := range s.chats {
		if chat.HasParticipant(userID) {
			listings = append(listings, models.ChatListing{Chat: chat, UnreadCount: s.unread[chat.ID][userID]})
		}
	}
	sort.Slice(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.LastMessageAt.Valid != b.LastMessageAt.Valid {
			return a.LastMessageAt.Valid
		}
		if a.LastMessageAt.Valid && !a.LastMessageAt.Time.Equal(b.LastMessageAt.Time) {
			return a.LastMessageAt.Time.After(b.LastMessageAt.Time)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return listings, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, chatID string, readerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[chatID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && !msgs[i].Read {
			readAt := at
			msgs[i].Read = true
			msgs[i].ReadAt = &readAt
		}
	}
	if counters, ok := s.unread[chatID]; ok {
		if _, ok := counters[readerID]; ok {
			counters[readerID] = 0
		}
	}
	return nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, chat models.Chat, senderID string, content string, at time.Time) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipientID, ok := chat.OtherParticipant(senderID)
	if !ok {
		return models.Message{}, fmt.Errorf("sender %s is not a participant of chat %s", senderID, chat.ID)
	}
	stored, ok := s.chats[chat.ID]
	if !ok {
		return models.Message{}, repositories.ErrChatNotFound
	}

	s.nextMsg++
	msg := models.Message{ID: s.nextMsg, ChatID: chat.ID, SenderID: senderID, Content: content, CreatedAt: at}
	s.messages[chat.ID] = append(s.messages[chat.ID], msg)

	stored.LastMessageContent.String, stored.LastMessageContent.Valid = content, true
	stored.LastMessageSender.String, stored.LastMessageSender.Valid = senderID, true
	stored.LastMessageAt.Time, stored.LastMessageAt.Valid = at, true
	stored.UpdatedAt = at
	s.chats[chat.ID] = stored

	if s.unread[chat.ID] == nil {
		s.unread[chat.ID] = map[string]int{}
	}
	s.unread[chat.ID][recipientID]++
	return msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message{}, s.messages[chatID]...), nil
}

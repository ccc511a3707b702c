package events

import "time"

// Payload is implemented by every event body. The set is closed: only the types in
// this package satisfy it, so producers cannot push an arbitrary map.
type Payload interface {
	isPayload()
}

// Content is a piece of readable content (novel, comic, manga).
type Content struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type,omitempty"`
	AuthorID string `json:"authorId,omitempty"`
	Premium  bool   `json:"premium,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ContentRef identifies removed content.
type ContentRef struct {
	ContentID string `json:"contentId"`
}

type ContentRating struct {
	ContentID string  `json:"contentId"`
	UserID    string  `json:"userId"`
	Rating    int     `json:"rating"`
	Average   float64 `json:"average,omitempty"`
}

type ContentView struct {
	ContentID string `json:"contentId"`
	ViewerID  string `json:"viewerId"`
	Views     int64  `json:"views,omitempty"`
}

// ContentEdit announces that a user started or stopped editing a piece of content.
type ContentEdit struct {
	ContentID string `json:"contentId"`
	UserID    string `json:"userId"`
	Editing   bool   `json:"editing"`
}

type Chapter struct {
	ID        string `json:"id"`
	ContentID string `json:"contentId"`
	Title     string `json:"title,omitempty"`
	Number    int    `json:"number,omitempty"`
}

type ChapterRef struct {
	ChapterID string `json:"chapterId"`
	ContentID string `json:"contentId"`
}

type UserProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

type UserStatus struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type Typing struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type FriendRequest struct {
	RequestID   string `json:"requestId"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
}

type Friendship struct {
	UserID   string `json:"userId"`
	FriendID string `json:"friendId"`
}

type CalendarEvent struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"ownerId"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt,omitempty"`
}

type CalendarRef struct {
	EventID string `json:"eventId"`
}

type CalendarInvite struct {
	EventID string `json:"eventId"`
	UserID  string `json:"userId"`
}

type Media struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	AlbumID string `json:"albumId,omitempty"`
	URL     string `json:"url,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type MediaRef struct {
	MediaID string `json:"mediaId"`
	OwnerID string `json:"ownerId"`
}

type Album struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Title   string `json:"title"`
}

type AlbumRef struct {
	AlbumID string `json:"albumId"`
	OwnerID string `json:"ownerId"`
}

type DiaryEntry struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Title   string `json:"title"`
	Mood    string `json:"mood,omitempty"`
}

type DiaryRef struct {
	EntryID string `json:"entryId"`
	OwnerID string `json:"ownerId"`
}

// Message is a private chat message.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Payment struct {
	PaymentID string `json:"paymentId"`
	UserID    string `json:"userId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	ContentID string `json:"contentId,omitempty"`
}

type Subscription struct {
	UserID   string    `json:"userId"`
	Plan     string    `json:"plan"`
	Status   string    `json:"status"`
	RenewsAt time.Time `json:"renewsAt,omitempty"`
}

type AdView struct {
	AdID      string `json:"adId"`
	UserID    string `json:"userId"`
	ContentID string `json:"contentId,omitempty"`
	Reward    int    `json:"reward,omitempty"`
}

type Notification struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
	Read   bool   `json:"read"`
}

type NotificationReadAck struct {
	NotificationID string `json:"notificationId"`
}

type AnnouncementBody struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Level string `json:"level,omitempty"`
}

// RoomAck confirms a join or leave.
type RoomAck struct {
	Room string `json:"room"`
}

// Failure is sent to a single connection when one of its requests failed.
type Failure struct {
	Event   Name   `json:"event,omitempty"`
	Message string `json:"message"`
}

// Status is the body of the client-local connection-status event.
type Status struct {
	Status  string `json:"status"`
	Attempt int    `json:"attempt,omitempty"`
}

type Empty struct{}

func (Content) isPayload()             {}
func (ContentRef) isPayload()          {}
func (ContentRating) isPayload()       {}
func (ContentView) isPayload()         {}
func (ContentEdit) isPayload()         {}
func (Chapter) isPayload()             {}
func (ChapterRef) isPayload()          {}
func (UserProfile) isPayload()         {}
func (UserStatus) isPayload()          {}
func (Typing) isPayload()              {}
func (FriendRequest) isPayload()       {}
func (Friendship) isPayload()          {}
func (CalendarEvent) isPayload()       {}
func (CalendarRef) isPayload()         {}
func (CalendarInvite) isPayload()      {}
func (Media) isPayload()               {}
func (MediaRef) isPayload()            {}
func (Album) isPayload()               {}
func (AlbumRef) isPayload()            {}
func (DiaryEntry) isPayload()          {}
func (DiaryRef) isPayload()            {}
func (Message) isPayload()             {}
func (Payment) isPayload()             {}
func (Subscription) isPayload()        {}
func (AdView) isPayload()              {}
func (Notification) isPayload()        {}
func (NotificationReadAck) isPayload() {}
func (AnnouncementBody) isPayload()    {}
func (RoomAck) isPayload()             {}
func (Failure) isPayload()             {}
func (Status) isPayload()              {}
func (Empty) isPayload()               {}

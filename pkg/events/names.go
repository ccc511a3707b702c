package events

// Name identifies an event on the wire. Names are plain strings with no versioning.
type Name string

// Server to client events.
const (
	ContentCreated Name = "content-created"
	ContentUpdated Name = "content-updated"
	ContentDeleted Name = "content-deleted"
	ContentRated   Name = "content-rated"
	ContentViewed  Name = "content-viewed"
	ContentEditing Name = "content-editing"

	ChapterCreated Name = "chapter-created"
	ChapterUpdated Name = "chapter-updated"
	ChapterDeleted Name = "chapter-deleted"

	UserProfileUpdated Name = "user-profile-updated"
	UserStatusChanged  Name = "user-status-changed"
	UserTyping         Name = "user-typing"

	FriendRequestReceived Name = "friend-request-received"
	FriendRequestSent     Name = "friend-request-sent"
	FriendRequestAccepted Name = "friend-request-accepted"
	FriendRequestRejected Name = "friend-request-rejected"
	FriendshipEnded       Name = "friendship-ended"

	CalendarEventCreated   Name = "calendar-event-created"
	CalendarEventUpdated   Name = "calendar-event-updated"
	CalendarEventDeleted   Name = "calendar-event-deleted"
	CalendarInviteReceived Name = "calendar-invite-received"
	CalendarInviteAccepted Name = "calendar-invite-accepted"
	CalendarInviteRejected Name = "calendar-invite-rejected"

	MediaUploaded Name = "media-uploaded"
	MediaUpdated  Name = "media-updated"
	MediaDeleted  Name = "media-deleted"
	AlbumCreated  Name = "album-created"
	AlbumUpdated  Name = "album-updated"
	AlbumDeleted  Name = "album-deleted"

	DiaryEntryCreated Name = "diary-entry-created"
	DiaryEntryUpdated Name = "diary-entry-updated"
	DiaryEntryDeleted Name = "diary-entry-deleted"

	MessageSent     Name = "message-sent"
	MessageReceived Name = "message-received"

	PaymentCompleted    Name = "payment-completed"
	SubscriptionUpdated Name = "subscription-updated"
	AdViewLogged        Name = "ad-view-logged"

	NotificationNew  Name = "notification"
	NotificationRead Name = "notification-read"
	Announcement     Name = "announcement"

	RoomJoined Name = "room-joined"
	RoomLeft   Name = "room-left"
	Pong       Name = "pong"
	Error      Name = "error"

	// ConnectionStatus is raised locally by the client, never sent by the server.
	ConnectionStatus Name = "connection-status"
)

// Client to server requests.
const (
	JoinContentRoom   Name = "join-content-room"
	JoinCalendarRoom  Name = "join-calendar-room"
	JoinMediaRoom     Name = "join-media-room"
	JoinAlbumRoom     Name = "join-album-room"
	JoinDiaryRoom     Name = "join-diary-room"
	LeaveContentRoom  Name = "leave-content-room"
	LeaveCalendarRoom Name = "leave-calendar-room"
	LeaveMediaRoom    Name = "leave-media-room"
	LeaveAlbumRoom    Name = "leave-album-room"
	LeaveDiaryRoom    Name = "leave-diary-room"

	SendMessage          Name = "sendMessage"
	TypingStart          Name = "typing-start"
	TypingStop           Name = "typing-stop"
	ContentEditStart     Name = "content-edit-start"
	ContentEditStop      Name = "content-edit-stop"
	UpdateStatus         Name = "update-status"
	MarkNotificationRead Name = "mark-notification-read"
	Ping                 Name = "ping"
)

// ServerEvents lists every event the server emits, in declaration order.
var ServerEvents = []Name{
	ContentCreated, ContentUpdated, ContentDeleted, ContentRated, ContentViewed, ContentEditing,
	ChapterCreated, ChapterUpdated, ChapterDeleted,
	UserProfileUpdated, UserStatusChanged, UserTyping,
	FriendRequestReceived, FriendRequestSent, FriendRequestAccepted, FriendRequestRejected, FriendshipEnded,
	CalendarEventCreated, CalendarEventUpdated, CalendarEventDeleted,
	CalendarInviteReceived, CalendarInviteAccepted, CalendarInviteRejected,
	MediaUploaded, MediaUpdated, MediaDeleted, AlbumCreated, AlbumUpdated, AlbumDeleted,
	DiaryEntryCreated, DiaryEntryUpdated, DiaryEntryDeleted,
	MessageSent, MessageReceived,
	PaymentCompleted, SubscriptionUpdated, AdViewLogged,
	NotificationNew, NotificationRead, Announcement,
	RoomJoined, RoomLeft, Pong, Error,
}

// RoomKind is the prefix of a room name. A room name is the kind followed by a resource id.
type RoomKind string

const (
	RoomContent  RoomKind = "content_"
	RoomCalendar RoomKind = "calendar_"
	RoomMedia    RoomKind = "media_"
	RoomAlbum    RoomKind = "album_"
	RoomDiary    RoomKind = "diary_"
	RoomUser     RoomKind = "user_"
)

// RoomName builds the room name for a resource.
func RoomName(kind RoomKind, id string) string {
	return string(kind) + id
}

// joinRequests maps each join/leave request to the room kind it targets.
var joinRequests = map[Name]RoomKind{
	JoinContentRoom:  RoomContent,
	JoinCalendarRoom: RoomCalendar,
	JoinMediaRoom:    RoomMedia,
	JoinAlbumRoom:    RoomAlbum,
	JoinDiaryRoom:    RoomDiary,
}

var leaveRequests = map[Name]RoomKind{
	LeaveContentRoom:  RoomContent,
	LeaveCalendarRoom: RoomCalendar,
	LeaveMediaRoom:    RoomMedia,
	LeaveAlbumRoom:    RoomAlbum,
	LeaveDiaryRoom:    RoomDiary,
}

// JoinKind reports the room kind targeted by a join request.
func JoinKind(n Name) (RoomKind, bool) {
	k, ok := joinRequests[n]
	return k, ok
}

// LeaveKind reports the room kind targeted by a leave request.
func LeaveKind(n Name) (RoomKind, bool) {
	k, ok := leaveRequests[n]
	return k, ok
}

// JoinRequestFor returns the join request name for a room kind.
func JoinRequestFor(kind RoomKind) (Name, bool) {
	for n, k := range joinRequests {
		if k == kind {
			return n, true
		}
	}
	return "", false
}

// LeaveRequestFor returns the leave request name for a room kind.
func LeaveRequestFor(kind RoomKind) (Name, bool) {
	for n, k := range leaveRequests {
		if k == kind {
			return n, true
		}
	}
	return "", false
}

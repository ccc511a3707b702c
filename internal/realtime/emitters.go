package realtime

import "content-realtime-api/pkg/events"

// Named emitters. Each one fixes the event name, the payload type and the
// target shape so producers cannot pair them inconsistently.

func contentRoom(id string) string  { return events.RoomName(events.RoomContent, id) }
func calendarRoom(id string) string { return events.RoomName(events.RoomCalendar, id) }
func mediaRoom(id string) string    { return events.RoomName(events.RoomMedia, id) }
func albumRoom(id string) string    { return events.RoomName(events.RoomAlbum, id) }
func diaryRoom(id string) string    { return events.RoomName(events.RoomDiary, id) }

// Content

func (d *Dispatcher) ContentCreated(c events.Content) int {
	return d.BroadcastToAll(events.ContentCreated, c)
}

func (d *Dispatcher) ContentUpdated(c events.Content) int {
	return d.EmitToRoom(contentRoom(c.ID), events.ContentUpdated, c)
}

func (d *Dispatcher) ContentDeleted(contentID string) int {
	return d.BroadcastToAll(events.ContentDeleted, events.ContentRef{ContentID: contentID})
}

func (d *Dispatcher) ContentRated(r events.ContentRating) int {
	return d.EmitToRoom(contentRoom(r.ContentID), events.ContentRated, r)
}

func (d *Dispatcher) ContentViewed(v events.ContentView) int {
	return d.EmitToRoom(contentRoom(v.ContentID), events.ContentViewed, v)
}

func (d *Dispatcher) ContentEditing(e events.ContentEdit) int {
	return d.EmitToRoom(contentRoom(e.ContentID), events.ContentEditing, e)
}

// Chapters

func (d *Dispatcher) ChapterCreated(ch events.Chapter) int {
	return d.EmitToRoom(contentRoom(ch.ContentID), events.ChapterCreated, ch)
}

func (d *Dispatcher) ChapterUpdated(ch events.Chapter) int {
	return d.EmitToRoom(contentRoom(ch.ContentID), events.ChapterUpdated, ch)
}

func (d *Dispatcher) ChapterDeleted(ref events.ChapterRef) int {
	return d.EmitToRoom(contentRoom(ref.ContentID), events.ChapterDeleted, ref)
}

// Users

func (d *Dispatcher) UserProfileUpdated(u events.UserProfile) int {
	return d.EmitToIdentity(u.ID, events.UserProfileUpdated, u)
}

func (d *Dispatcher) UserStatusChanged(s events.UserStatus) int {
	return d.BroadcastToAll(events.UserStatusChanged, s)
}

func (d *Dispatcher) UserTyping(recipientID string, t events.Typing) int {
	return d.EmitToIdentity(recipientID, events.UserTyping, t)
}

// Relationships

func (d *Dispatcher) FriendRequestSent(r events.FriendRequest) int {
	return d.EmitToIdentity(r.SenderID, events.FriendRequestSent, r) +
		d.EmitToIdentity(r.RecipientID, events.FriendRequestReceived, r)
}

func (d *Dispatcher) FriendRequestAccepted(r events.FriendRequest) int {
	return d.EmitToIdentities([]string{r.SenderID, r.RecipientID}, events.FriendRequestAccepted, r)
}

func (d *Dispatcher) FriendRequestRejected(r events.FriendRequest) int {
	return d.EmitToIdentity(r.SenderID, events.FriendRequestRejected, r)
}

func (d *Dispatcher) FriendshipEnded(f events.Friendship) int {
	return d.EmitToIdentity(f.UserID, events.FriendshipEnded, f) +
		d.EmitToIdentity(f.FriendID, events.FriendshipEnded, events.Friendship{UserID: f.FriendID, FriendID: f.UserID})
}

// Calendar

func (d *Dispatcher) CalendarEventCreated(e events.CalendarEvent) int {
	return d.BroadcastToAll(events.CalendarEventCreated, e)
}

func (d *Dispatcher) CalendarEventUpdated(e events.CalendarEvent) int {
	return d.EmitToRoom(calendarRoom(e.ID), events.CalendarEventUpdated, e)
}

func (d *Dispatcher) CalendarEventDeleted(eventID string) int {
	return d.EmitToRoom(calendarRoom(eventID), events.CalendarEventDeleted, events.CalendarRef{EventID: eventID})
}

func (d *Dispatcher) CalendarInviteReceived(inv events.CalendarInvite) int {
	return d.EmitToIdentity(inv.UserID, events.CalendarInviteReceived, inv)
}

func (d *Dispatcher) CalendarInviteAccepted(inv events.CalendarInvite) int {
	return d.EmitToRoom(calendarRoom(inv.EventID), events.CalendarInviteAccepted, inv)
}

func (d *Dispatcher) CalendarInviteRejected(inv events.CalendarInvite) int {
	return d.EmitToRoom(calendarRoom(inv.EventID), events.CalendarInviteRejected, inv)
}

// Media and albums

func (d *Dispatcher) MediaUploaded(m events.Media) int {
	return d.EmitToIdentityAndRoom(m.OwnerID, mediaRoom(m.ID), events.MediaUploaded, m)
}

func (d *Dispatcher) MediaUpdated(m events.Media) int {
	return d.EmitToIdentityAndRoom(m.OwnerID, mediaRoom(m.ID), events.MediaUpdated, m)
}

func (d *Dispatcher) MediaDeleted(ref events.MediaRef) int {
	return d.EmitToIdentityAndRoom(ref.OwnerID, mediaRoom(ref.MediaID), events.MediaDeleted, ref)
}

func (d *Dispatcher) AlbumCreated(a events.Album) int {
	return d.EmitToIdentityAndRoom(a.OwnerID, albumRoom(a.ID), events.AlbumCreated, a)
}

func (d *Dispatcher) AlbumUpdated(a events.Album) int {
	return d.EmitToIdentityAndRoom(a.OwnerID, albumRoom(a.ID), events.AlbumUpdated, a)
}

func (d *Dispatcher) AlbumDeleted(ref events.AlbumRef) int {
	return d.EmitToIdentityAndRoom(ref.OwnerID, albumRoom(ref.AlbumID), events.AlbumDeleted, ref)
}

// Diary

func (d *Dispatcher) DiaryEntryCreated(e events.DiaryEntry) int {
	return d.EmitToIdentityAndRoom(e.OwnerID, diaryRoom(e.ID), events.DiaryEntryCreated, e)
}

func (d *Dispatcher) DiaryEntryUpdated(e events.DiaryEntry) int {
	return d.EmitToIdentityAndRoom(e.OwnerID, diaryRoom(e.ID), events.DiaryEntryUpdated, e)
}

func (d *Dispatcher) DiaryEntryDeleted(ref events.DiaryRef) int {
	return d.EmitToIdentityAndRoom(ref.OwnerID, diaryRoom(ref.EntryID), events.DiaryEntryDeleted, ref)
}

// Chat

// MessageDelivered confirms to the sender and delivers to the recipient.
func (d *Dispatcher) MessageDelivered(m events.Message) int {
	return d.EmitToIdentity(m.SenderID, events.MessageSent, m) +
		d.EmitToIdentity(m.RecipientID, events.MessageReceived, m)
}

// Payments and ads

func (d *Dispatcher) PaymentCompleted(p events.Payment) int {
	return d.EmitToIdentity(p.UserID, events.PaymentCompleted, p)
}

func (d *Dispatcher) SubscriptionUpdated(s events.Subscription) int {
	return d.EmitToIdentity(s.UserID, events.SubscriptionUpdated, s)
}

func (d *Dispatcher) AdViewLogged(v events.AdView) int {
	return d.EmitToIdentity(v.UserID, events.AdViewLogged, v)
}

// Notifications

func (d *Dispatcher) Notify(n events.Notification) int {
	return d.EmitToIdentity(n.UserID, events.NotificationNew, n)
}

func (d *Dispatcher) NotificationRead(userID, notificationID string) int {
	return d.EmitToIdentity(userID, events.NotificationRead, events.NotificationReadAck{NotificationID: notificationID})
}

func (d *Dispatcher) Announce(a events.AnnouncementBody) int {
	return d.BroadcastToAll(events.Announcement, a)
}

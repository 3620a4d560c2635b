package services

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/estatelink/estatelink/models"
)

func seedUsers(t *testing.T, db *gorm.DB) (models.User, models.User) {
	t.Helper()
	alice := models.User{FirstName: "Alice", LastName: "Smith", Email: "alice@x.com", Role: models.RoleCustomer}
	bob := models.User{FirstName: "Bob", LastName: "Jones", Email: "bob@x.com", Role: models.RoleAgent}
	if err := db.Create(&alice).Error; err != nil {
		t.Fatalf("failed to seed alice: %v", err)
	}
	if err := db.Create(&bob).Error; err != nil {
		t.Fatalf("failed to seed bob: %v", err)
	}
	return alice, bob
}

func seedProperty(t *testing.T, db *gorm.DB, owner models.User) models.Property {
	t.Helper()
	property := models.Property{
		OwnerID: owner.ID,
		Title:   "Sunny 2BR Apartment",
		Type:    "apartment",
		Price:   250000,
		City:    "Lisbon",
		Status:  models.PropertyActive,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("failed to seed property: %v", err)
	}
	return property
}

func TestCreateOrGetConversationIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	first, err := svc.CreateOrGetConversation(alice.ID, bob.ID, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.CreateOrGetConversation(alice.ID, bob.ID, nil)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same conversation, got %d and %d", first.ID, second.ID)
	}

	// Order of the pair doesn't matter either.
	third, err := svc.CreateOrGetConversation(bob.ID, alice.ID, nil)
	if err != nil {
		t.Fatalf("reversed create failed: %v", err)
	}
	if third.ID != first.ID {
		t.Fatalf("pair should be unordered, got %d and %d", first.ID, third.ID)
	}

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one conversation, got %d", count)
	}
}

func TestConversationPropertyScopeIsPartOfTheKey(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)
	property := seedProperty(t, db, bob)

	unscoped, err := svc.CreateOrGetConversation(alice.ID, bob.ID, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	scoped, err := svc.CreateOrGetConversation(alice.ID, bob.ID, &property.ID)
	if err != nil {
		t.Fatalf("scoped create failed: %v", err)
	}
	if unscoped.ID == scoped.ID {
		t.Fatalf("property scope must separate conversations")
	}
	if scoped.Title != property.Title {
		t.Fatalf("scoped conversation title should come from the listing, got %q", scoped.Title)
	}
	if unscoped.Title != "Bob Jones" {
		t.Fatalf("unscoped conversation title should come from the other participant, got %q", unscoped.Title)
	}
	if scoped.Status != models.ConversationPending {
		t.Fatalf("new conversations start pending, got %q", scoped.Status)
	}
}

func TestCreateOrGetConversationMissingUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, _ := seedUsers(t, db)

	if _, err := svc.CreateOrGetConversation(alice.ID, 9999, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
	missing := uint(9999)
	if _, err := svc.CreateOrGetConversation(alice.ID, alice.ID+1, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing property, got %v", err)
	}
}

func TestSendMessageCreatesConversationWithBothParticipants(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	message, err := svc.SendMessage(alice.ID, SendMessageInput{
		RecipientID: bob.ID,
		Content:     "Is this still available?",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	var conv models.Conversation
	if err := db.Preload("Participants").First(&conv, message.ConversationID).Error; err != nil {
		t.Fatalf("conversation missing: %v", err)
	}
	if !conv.HasParticipant(alice.ID) || !conv.HasParticipant(bob.ID) {
		t.Fatalf("conversation must contain sender and recipient")
	}
	if message.SenderName != "Alice Smith" || message.RecipientName != "Bob Jones" {
		t.Fatalf("names not snapshotted: %q / %q", message.SenderName, message.RecipientName)
	}
	if conv.LastMessage != "Is this still available?" {
		t.Fatalf("conversation preview not updated, got %q", conv.LastMessage)
	}

	// Recipient's unread counter bumped, sender's untouched.
	var bobPart, alicePart models.ConversationParticipant
	db.Where("conversation_id = ? AND user_id = ?", conv.ID, bob.ID).First(&bobPart)
	db.Where("conversation_id = ? AND user_id = ?", conv.ID, alice.ID).First(&alicePart)
	if bobPart.UnreadCount != 1 || alicePart.UnreadCount != 0 {
		t.Fatalf("unread counts wrong: bob=%d alice=%d", bobPart.UnreadCount, alicePart.UnreadCount)
	}
}

func TestSendMessageValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	if _, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty content, got %v", err)
	}
	if _, err := svc.SendMessage(alice.ID, SendMessageInput{Content: "hi"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing recipient, got %v", err)
	}
}

func TestSendMessageIntoForeignConversation(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)
	eve := models.User{FirstName: "Eve", LastName: "Doe", Email: "eve@x.com"}
	db.Create(&eve)

	conv, err := svc.CreateOrGetConversation(alice.ID, bob.ID, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.SendMessage(eve.ID, SendMessageInput{
		RecipientID:    bob.ID,
		Content:        "hello",
		ConversationID: &conv.ID,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-participant sender, got %v", err)
	}
}

func TestSendMessageSnapshotsPropertyTitle(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)
	property := seedProperty(t, db, bob)

	message, err := svc.SendMessage(alice.ID, SendMessageInput{
		RecipientID: bob.ID,
		Content:     "Can I visit?",
		PropertyID:  &property.ID,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if message.PropertyTitle != property.Title {
		t.Fatalf("property title not snapshotted, got %q", message.PropertyTitle)
	}

	// Retitling the listing must not rewrite history.
	db.Model(&models.Property{}).Where("id = ?", property.ID).Update("title", "Renamed")
	var stored models.Message
	db.First(&stored, message.ID)
	if stored.PropertyTitle != property.Title {
		t.Fatalf("snapshot changed after listing edit: %q", stored.PropertyTitle)
	}
}

func TestSendMessagePreviewKeepsRuneBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	content := strings.Repeat("é", 100) // 200 bytes, boundary falls mid-rune
	message, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: content})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	var conv models.Conversation
	db.First(&conv, message.ConversationID)
	if !utf8.ValidString(conv.LastMessage) {
		t.Fatalf("preview is not valid UTF-8: %q", conv.LastMessage)
	}
	if len(conv.LastMessage) > 120 {
		t.Fatalf("preview longer than 120 bytes: %d", len(conv.LastMessage))
	}
	if len(conv.LastMessage) == 0 {
		t.Fatalf("preview should not be empty")
	}
}

func TestGetMessagesMarksThemRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	var convID uint
	for _, text := range []string{"first", "second", "third"} {
		message, err := svc.SendMessage(bob.ID, SendMessageInput{RecipientID: alice.ID, Content: text})
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		convID = message.ConversationID
	}

	messages, err := svc.GetMessagesByConversation(alice.ID, convID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Content != "first" || messages[2].Content != "third" {
		t.Fatalf("messages not oldest-first: %q ... %q", messages[0].Content, messages[2].Content)
	}
	for _, m := range messages {
		if !m.IsRead || m.ReadAt == nil {
			t.Fatalf("reading must mark message %d read", m.ID)
		}
	}

	count, err := svc.UnreadCount(alice.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected unread count 0 after reading, got %d", count)
	}

	var part models.ConversationParticipant
	db.Where("conversation_id = ? AND user_id = ?", convID, alice.ID).First(&part)
	if part.UnreadCount != 0 {
		t.Fatalf("conversation unread counter not reset, got %d", part.UnreadCount)
	}
}

func TestGetMessagesRequiresParticipant(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)
	eve := models.User{FirstName: "Eve", LastName: "Doe", Email: "eve@x.com"}
	db.Create(&eve)

	message, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if _, err := svc.GetMessagesByConversation(eve.ID, message.ConversationID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetMessagesByConversation(alice.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptMessagePropagatesToConversation(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	message, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// Only the recipient may accept.
	if _, err := svc.AcceptMessage(alice.ID, message.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for sender accept, got %v", err)
	}

	updated, err := svc.AcceptMessage(bob.ID, message.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if updated.Status != models.MessageAccepted {
		t.Fatalf("message status not updated, got %q", updated.Status)
	}

	var conv models.Conversation
	db.First(&conv, message.ConversationID)
	if conv.Status != models.ConversationAccepted {
		t.Fatalf("conversation status should follow the last action, got %q", conv.Status)
	}

	// Ignoring a later message overwrites the conversation status.
	second, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "there"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := svc.IgnoreMessage(bob.ID, second.ID); err != nil {
		t.Fatalf("ignore failed: %v", err)
	}
	db.First(&conv, message.ConversationID)
	if conv.Status != models.ConversationIgnored {
		t.Fatalf("conversation status is last-writer-wins, got %q", conv.Status)
	}
}

func TestListMessagesFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	first, _ := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "one"})
	svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "two"})
	svc.AcceptMessage(bob.ID, first.ID)

	accepted, err := svc.ListMessages(bob.ID, models.MessageAccepted)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(accepted) != 1 || accepted[0].ID != first.ID {
		t.Fatalf("expected only the accepted message, got %d", len(accepted))
	}

	all, err := svc.ListMessages(bob.ID, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both messages, got %d", len(all))
	}
}

func TestDeleteMessageLeavesTombstone(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)
	eve := models.User{FirstName: "Eve", LastName: "Doe", Email: "eve@x.com"}
	db.Create(&eve)

	message, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "secret"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if err := svc.DeleteMessage(eve.ID, message.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider delete, got %v", err)
	}

	var before int64
	db.Model(&models.Message{}).Where("conversation_id = ?", message.ConversationID).Count(&before)

	if err := svc.DeleteMessage(alice.ID, message.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var after int64
	db.Model(&models.Message{}).Where("conversation_id = ?", message.ConversationID).Count(&after)
	if before != after {
		t.Fatalf("soft delete must preserve message count: %d != %d", before, after)
	}

	var stored models.Message
	db.First(&stored, message.ID)
	if stored.Content != models.DeletedMessageContent {
		t.Fatalf("expected tombstone content, got %q", stored.Content)
	}
}

func TestDeleteConversationCascadesOnlyWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	message, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	convID := message.ConversationID

	if err := svc.DeleteConversation(alice.ID, convID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Conversation survives with one participant left.
	var conv models.Conversation
	if err := db.First(&conv, convID).Error; err != nil {
		t.Fatalf("conversation should survive first removal: %v", err)
	}
	var participants int64
	db.Model(&models.ConversationParticipant{}).Where("conversation_id = ?", convID).Count(&participants)
	if participants != 1 {
		t.Fatalf("expected one remaining participant, got %d", participants)
	}

	// A removed participant can no longer touch it.
	if err := svc.DeleteConversation(alice.ID, convID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after leaving, got %v", err)
	}

	// The last participant leaving deletes conversation and messages.
	if err := svc.DeleteConversation(bob.ID, convID); err != nil {
		t.Fatalf("final delete failed: %v", err)
	}
	if err := db.First(&conv, convID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("conversation should be gone, got %v", err)
	}
	var messages int64
	db.Model(&models.Message{}).Where("conversation_id = ?", convID).Count(&messages)
	if messages != 0 {
		t.Fatalf("messages should cascade, %d left", messages)
	}
}

func TestGetConversationReturnsRecentMessagesOldestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessagingService(db)
	alice, bob := seedUsers(t, db)

	var convID uint
	for i := 0; i < 25; i++ {
		message, err := svc.SendMessage(alice.ID, SendMessageInput{RecipientID: bob.ID, Content: "m"})
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		convID = message.ConversationID
	}

	_, messages, err := svc.GetConversation(bob.ID, convID, 20)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(messages) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].ID < messages[i-1].ID {
			t.Fatalf("messages not oldest-first after reversal")
		}
	}
}

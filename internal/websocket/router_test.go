package websocket

import (
	"fmt"
	"strings"
	"testing"

	"realtime-chat/internal/models"
	"realtime-chat/internal/protocol"
)

func TestPersistentMessageCarriesStorageID(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c1", "u1", "u2")
	g := newTestGateway(store)

	a := connect(g, "u1")
	b := connect(g, "u2")
	dispatchJSON(g, a, protocol.EventJoinChat, `"c1"`)
	dispatchJSON(g, b, protocol.EventJoinChat, `"c1"`)
	drain(a)
	drain(b)

	dispatchJSON(g, a, protocol.EventSendMessage,
		`{"chatId":"c1","content":"hi","senderName":"A","isPersistent":true}`)

	for _, c := range []*Client{a, b} {
		msg := recvMessage(t, c)
		if msg.ID != "m100" {
			t.Errorf("expected storage id m100, got %q", msg.ID)
		}
		if msg.Content != "hi" {
			t.Errorf("expected content \"hi\", got %q", msg.Content)
		}
		if msg.IsTemporary {
			t.Error("persisted message flagged temporary")
		}
		if msg.SenderID != "u1" {
			t.Errorf("expected sender u1, got %q", msg.SenderID)
		}
	}

	if store.insertCount() != 1 {
		t.Errorf("expected exactly 1 insert, got %d", store.insertCount())
	}
	last, ok := store.lastMessage("c1")
	if !ok {
		t.Fatal("chat last-message summary not updated")
	}
	if last.Content != "hi" || last.SenderName != "A" || last.Type != models.MessageKindText {
		t.Errorf("unexpected last-message summary: %+v", last)
	}
}

func TestTemporaryMessageNeverTouchesStorage(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c1", "u1", "u2")
	g := newTestGateway(store)

	a := connect(g, "u1")
	b := connect(g, "u2")
	dispatchJSON(g, a, protocol.EventJoinChat, `"c1"`)
	dispatchJSON(g, b, protocol.EventJoinChat, `"c1"`)
	drain(a)
	drain(b)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		dispatchJSON(g, a, protocol.EventSendMessage,
			`{"chatId":"c1","content":"psst","senderName":"A","isPersistent":false}`)

		msgA := recvMessage(t, a)
		msgB := recvMessage(t, b)
		if msgA.ID != msgB.ID {
			t.Errorf("sender and receiver saw different ids: %q vs %q", msgA.ID, msgB.ID)
		}
		if !strings.HasPrefix(msgA.ID, models.TempIDPrefix) {
			t.Errorf("temporary id %q missing %q prefix", msgA.ID, models.TempIDPrefix)
		}
		if !msgA.IsTemporary {
			t.Error("temporary message not flagged")
		}
		if seen[msgA.ID] {
			t.Errorf("temporary id %q repeated", msgA.ID)
		}
		seen[msgA.ID] = true
	}

	if store.insertCount() != 0 {
		t.Errorf("temporary messages reached storage: %d inserts", store.insertCount())
	}
	if _, ok := store.lastMessage("c1"); ok {
		t.Error("temporary message updated the last-message summary")
	}
}

func TestUnauthorizedSenderGetsScopedError(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c2", "u1", "u2")
	g := newTestGateway(store)

	member := connect(g, "u1")
	outsider := connect(g, "u3")
	dispatchJSON(g, member, protocol.EventJoinChat, `"c2"`)
	dispatchJSON(g, outsider, protocol.EventJoinChat, `"c2"`)
	drain(member)
	drain(outsider)

	dispatchJSON(g, outsider, protocol.EventSendMessage,
		`{"chatId":"c2","content":"let me in","senderName":"C"}`)

	env := recvEvent(t, outsider)
	if env.Event != protocol.EventError {
		t.Fatalf("expected error event, got %s", env.Event)
	}
	assertNoEvent(t, member)
	if store.insertCount() != 0 {
		t.Error("unauthorized message was persisted")
	}
}

func TestMissingFieldsRejectedBeforeStorage(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c1", "u1")
	g := newTestGateway(store)

	a := connect(g, "u1")
	dispatchJSON(g, a, protocol.EventJoinChat, `"c1"`)
	drain(a)

	cases := []string{
		`{"content":"hi","senderName":"A"}`,
		`{"chatId":"c1","content":"hi"}`,
	}
	for _, data := range cases {
		dispatchJSON(g, a, protocol.EventSendMessage, data)
		env := recvEvent(t, a)
		if env.Event != protocol.EventError {
			t.Errorf("payload %s: expected error event, got %s", data, env.Event)
		}
	}
	if store.insertCount() != 0 {
		t.Error("invalid message reached storage")
	}
}

func TestStorageFailureIsScopedAndNonFatal(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c1", "u1", "u2")
	store.insertErr = fmt.Errorf("insert failed")
	g := newTestGateway(store)

	a := connect(g, "u1")
	b := connect(g, "u2")
	dispatchJSON(g, a, protocol.EventJoinChat, `"c1"`)
	dispatchJSON(g, b, protocol.EventJoinChat, `"c1"`)
	drain(a)
	drain(b)

	dispatchJSON(g, a, protocol.EventSendMessage,
		`{"chatId":"c1","content":"hi","senderName":"A"}`)

	env := recvEvent(t, a)
	if env.Event != protocol.EventError {
		t.Fatalf("expected error event, got %s", env.Event)
	}
	assertNoEvent(t, b)

	// The connection survives: a later valid send still works.
	store.insertErr = nil
	dispatchJSON(g, a, protocol.EventSendMessage,
		`{"chatId":"c1","content":"again","senderName":"A"}`)
	if msg := recvMessage(t, b); msg.Content != "again" {
		t.Errorf("follow-up message not delivered, got %+v", msg)
	}
}

func TestDeliveryIsScopedToRoom(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c1", "u1", "u2")
	store.addChat("d1", "u3")
	g := newTestGateway(store)

	a := connect(g, "u1")
	b := connect(g, "u2")
	other := connect(g, "u3")
	dispatchJSON(g, a, protocol.EventJoinChat, `"c1"`)
	dispatchJSON(g, b, protocol.EventJoinChat, `"c1"`)
	dispatchJSON(g, other, protocol.EventJoinChat, `"d1"`)
	drain(a)
	drain(b)
	drain(other)

	dispatchJSON(g, a, protocol.EventSendMessage,
		`{"chatId":"c1","content":"hello","senderName":"A"}`)

	recvMessage(t, a)
	recvMessage(t, b)
	assertNoEvent(t, other)
}

func TestMediaSummaryLabels(t *testing.T) {
	tests := []struct {
		name    string
		payload protocol.SendMessagePayload
		want    string
	}{
		{"text uses raw content", protocol.SendMessagePayload{Type: "text", Content: "hey"}, "hey"},
		{"default type is text", protocol.SendMessagePayload{Content: "yo"}, "yo"},
		{"image with name", protocol.SendMessagePayload{Type: "image", MediaName: "cat.png"}, "📷 cat.png"},
		{"video with name", protocol.SendMessagePayload{Type: "video", MediaName: "clip.mp4"}, "🎥 clip.mp4"},
		{"audio without name", protocol.SendMessagePayload{Type: "audio"}, "🎵 audio file"},
		{"file fallback", protocol.SendMessagePayload{Type: "file", MediaName: "doc.pdf"}, "📎 doc.pdf"},
		{"unknown kind fallback", protocol.SendMessagePayload{Type: "sticker"}, "📎 sticker file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summaryFor(&tt.payload); got != tt.want {
				t.Errorf("summaryFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMediaFieldsCopiedVerbatim(t *testing.T) {
	store := newFakeStorage()
	store.addChat("c1", "u1")
	g := newTestGateway(store)

	a := connect(g, "u1")
	dispatchJSON(g, a, protocol.EventJoinChat, `"c1"`)
	drain(a)

	dispatchJSON(g, a, protocol.EventSendMessage,
		`{"chatId":"c1","senderName":"A","type":"video","mediaUrl":"/media/v.mp4","mediaName":"v.mp4","mediaSize":1024,"mediaDuration":12.5,"thumbnailUrl":"/media/v.jpg"}`)

	msg := recvMessage(t, a)
	if msg.Type != models.MessageKindVideo {
		t.Errorf("expected video kind, got %q", msg.Type)
	}
	if msg.MediaURL != "/media/v.mp4" || msg.MediaName != "v.mp4" ||
		msg.MediaSize != 1024 || msg.MediaDuration != 12.5 || msg.ThumbnailURL != "/media/v.jpg" {
		t.Errorf("media fields not copied verbatim: %+v", msg)
	}
}

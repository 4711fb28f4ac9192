package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseServerDispatchesByType(t *testing.T) {
	raw := []byte(`{"type":"response.text.delta","event_id":"e1","response_id":"R1","item_id":"I1","content_index":0,"delta":"hi"}`)
	e, err := ParseServer(raw)
	require.NoError(t, err)

	delta, ok := e.(*ResponseTextDeltaEvent)
	require.True(t, ok)
	require.Equal(t, "response.text.delta", delta.EventType())
	require.Equal(t, "I1", delta.ItemID)
	require.Equal(t, "hi", delta.Delta)
}

func TestParseServerError(t *testing.T) {
	raw := []byte(`{"type":"error","error":{"type":"invalid_request_error","code":"bad","message":"nope"}}`)
	e, err := ParseServer(raw)
	require.NoError(t, err)

	errEvent, ok := e.(*ErrorEvent)
	require.True(t, ok)
	require.Equal(t, "bad", errEvent.Error.Code)
	require.Equal(t, "nope", errEvent.Error.Message)
}

func TestParseServerUnknownType(t *testing.T) {
	raw := []byte(`{"type":"response.shiny.new","event_id":"e2"}`)
	e, err := ParseServer(raw)
	require.NoError(t, err)

	u, ok := e.(*UnknownEvent)
	require.True(t, ok)
	require.Equal(t, "response.shiny.new", u.Type)
	require.JSONEq(t, string(raw), string(u.Raw))
}

func TestMarshalClientEvent(t *testing.T) {
	e := NewConversationItemDeleteEvent("I1")
	data, err := Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "conversation.item.delete", decoded["type"])
	require.Equal(t, "I1", decoded["item_id"])
	require.NotEmpty(t, decoded["event_id"])
}

func TestMaxTokensJSON(t *testing.T) {
	data, err := json.Marshal(MaxTokens("200"))
	require.NoError(t, err)
	require.Equal(t, "200", string(data))

	data, err = json.Marshal(MaxTokensInf)
	require.NoError(t, err)
	require.Equal(t, `"inf"`, string(data))

	var n MaxTokens
	require.NoError(t, json.Unmarshal([]byte("4096"), &n))
	require.Equal(t, MaxTokens("4096"), n)
	require.NoError(t, json.Unmarshal([]byte(`"inf"`), &n))
	require.Equal(t, MaxTokensInf, n)
}

func TestSessionUpdateApplyTo(t *testing.T) {
	instructions := "be brief"
	base := Session{ID: "sess_1", Voice: "coral", Temperature: 0.7}
	got := SessionUpdate{Voice: "echo", Instructions: &instructions}.ApplyTo(base)

	require.Equal(t, "sess_1", got.ID)
	require.Equal(t, "echo", got.Voice)
	require.Equal(t, "be brief", got.Instructions)
	require.Equal(t, 0.7, got.Temperature)
}

func TestSessionUpdateApplyToFoldsZeroValues(t *testing.T) {
	cleared := ""
	zero := 0.0
	base := Session{ID: "sess_1", Instructions: "be verbose", Temperature: 0.7}

	got := SessionUpdate{Instructions: &cleared, Temperature: &zero}.ApplyTo(base)
	require.Empty(t, got.Instructions)
	require.Zero(t, got.Temperature)

	// Unset pointers leave the snapshot untouched.
	got = SessionUpdate{Voice: "echo"}.ApplyTo(base)
	require.Equal(t, "be verbose", got.Instructions)
	require.Equal(t, 0.7, got.Temperature)
}

func TestNewItemIDPrefix(t *testing.T) {
	id := NewItemID()
	require.True(t, len(id) > len("item_"))
	require.Equal(t, "item_", id[:5])
	require.NotEqual(t, id, NewItemID())
}

func TestNewUserMessageItem(t *testing.T) {
	item := NewUserMessageItem("hello")
	require.Equal(t, ItemTypeMessage, item.Type)
	require.Equal(t, RoleUser, item.Role)
	require.Len(t, item.Content, 1)
	require.Equal(t, ContentTypeInputText, item.Content[0].Type)
	require.Equal(t, "hello", item.Content[0].Text)
}

package signal

import (
	"encoding/json"
	"errors"
)

// Message types accepted from clients.
const (
	TypeJoin      = "join"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
	TypeKeepalive = "keepalive"
)

// Message types emitted by the server.
const (
	TypeError            = "error"
	TypeRoomStatus       = "room-status"
	TypeRoomReady        = "room-ready"
	TypeUserJoined       = "user-joined"
	TypeUserDisconnected = "user-disconnected"
	TypeKeepaliveAck     = "keepalive-ack"
)

// Error messages sent to clients.
const (
	MsgInvalidType    = "Invalid message type"
	MsgInvalidJSON    = "Invalid JSON format"
	MsgRoomFull       = "Room is full"
	MsgAlreadyInRoom  = "Already in a room"
	MsgNotInRoom      = "Not in a room"
	MsgMissingRoomIDs = "Missing roomId or userId"
)

var errInvalidFrame = errors.New("frame is not a valid json object")

// Envelope is one parsed inbound frame. Routing fields are extracted for
// dispatch; everything else stays in fields as raw JSON so that payload
// content (SDP bodies, ICE candidates) passes through the relay untouched.
type Envelope struct {
	Type         string
	RoomID       string
	UserID       string
	TargetUserID string

	fields map[string]json.RawMessage
}

// ParseEnvelope decodes a frame into an Envelope. A frame that is not a JSON
// object is rejected; missing or non-string routing fields are left empty and
// handled by the dispatcher.
func ParseEnvelope(data []byte) (*Envelope, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errInvalidFrame
	}

	env := &Envelope{fields: fields}
	env.Type = stringField(fields, "type")
	env.RoomID = stringField(fields, "roomId")
	env.UserID = stringField(fields, "userId")
	env.TargetUserID = stringField(fields, "targetUserId")
	return env, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// EncodeAsSender re-encodes the envelope with userId forced to the given
// sender so that a client cannot impersonate its peer. All other fields are
// forwarded verbatim.
func (e *Envelope) EncodeAsSender(senderID string) []byte {
	quoted, _ := json.Marshal(senderID)
	e.fields["userId"] = quoted
	data, _ := json.Marshal(e.fields)
	return data
}

func encodeMessage(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}

func errorMessage(message string) []byte {
	return encodeMessage(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{TypeError, message})
}

func roomStatusMessage(users []string) []byte {
	return encodeMessage(struct {
		Type  string   `json:"type"`
		Users []string `json:"users"`
	}{TypeRoomStatus, users})
}

func roomReadyMessage(users []string) []byte {
	return encodeMessage(struct {
		Type  string   `json:"type"`
		Users []string `json:"users"`
	}{TypeRoomReady, users})
}

func userJoinedMessage(userID string) []byte {
	return encodeMessage(struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}{TypeUserJoined, userID})
}

func userDisconnectedMessage(userID string) []byte {
	return encodeMessage(struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}{TypeUserDisconnected, userID})
}

func keepaliveAckMessage() []byte {
	return encodeMessage(struct {
		Type string `json:"type"`
	}{TypeKeepaliveAck})
}

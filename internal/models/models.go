package models

import "time"

type Member struct {
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PassHash    []byte    `json:"passwordHash"`
	Verified    bool      `json:"verified"`
	Token       string    `json:"token"`
	TokenExpiry time.Time `json:"tokenExpiry"`
}

type Admin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	PassHash []byte `json:"passwordHash"`
}

type UploadRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	File    string `json:"file"`
	Reply   string `json:"reply"`
}

// Event is what the live channel fans out to connected clients. Chat events
// are ephemeral; upload and reply events mirror records that are already
// persisted, so losing one only costs latency, never data.
type Event struct {
	Type     string `json:"type"`
	User     string `json:"user,omitempty"`
	Text     string `json:"text,omitempty"`
	UploadID int64  `json:"upload_id,omitempty"`
	File     string `json:"file,omitempty"`
}

const (
	EventChat   = "chat message"
	EventUpload = "upload"
	EventReply  = "reply"
)

type MailMessage struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

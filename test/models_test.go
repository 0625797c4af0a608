//go:build integration
// +build integration

package test

import "github.com/coregx/fabrica"

// Message is a mail message row for workload tests.
type Message struct {
	ID          int64
	MailboxID   int64
	UserID      int64
	UID         int64
	Status      int64
	Size        int64
	Subject     string
	Attachments []Attachment
}

// Attachment is a mail attachment row.
type Attachment struct {
	ID        int64
	MessageID int64
	Filename  string
	Size      int64
}

// MessageWithStats carries a message plus aggregated attachment data
// from a JOIN ... GROUP BY query.
type MessageWithStats struct {
	Message
	AttachmentCount int64
}

// TestUser is a user row for condition and JOIN tests.
type TestUser struct {
	ID      int64
	Name    string
	Email   string
	Age     int64
	Balance float64
	Active  bool
	Role    string
}

// Row mappers for SelectAs.

func messageFromRow(r fabrica.Row) Message {
	return Message{
		ID:        r.Int("id"),
		MailboxID: r.Int("mailbox_id"),
		UserID:    r.Int("user_id"),
		UID:       r.Int("uid"),
		Status:    r.Int("status"),
		Size:      r.Int("size"),
		Subject:   r.String("subject"),
	}
}

func attachmentFromRow(r fabrica.Row) Attachment {
	return Attachment{
		ID:        r.Int("id"),
		MessageID: r.Int("message_id"),
		Filename:  r.String("filename"),
		Size:      r.Int("size"),
	}
}

func messageWithStatsFromRow(r fabrica.Row) MessageWithStats {
	return MessageWithStats{
		Message:         messageFromRow(r),
		AttachmentCount: r.Int("attachment_count"),
	}
}

func userFromRow(r fabrica.Row) TestUser {
	return TestUser{
		ID:      r.Int("id"),
		Name:    r.String("name"),
		Email:   r.String("email"),
		Age:     r.Int("age"),
		Balance: r.Float("balance"),
		Active:  r.Bool("active"),
		Role:    r.String("role"),
	}
}

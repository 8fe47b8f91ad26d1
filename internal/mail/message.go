package mail

// Attachment is a file carried by an outgoing message.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Message is a provider-neutral outgoing email.
type Message struct {
	FromName   string
	From       string
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

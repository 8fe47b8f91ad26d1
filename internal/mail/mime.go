package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// BuildMIME renders a Message as a multipart/mixed RFC 822 payload: a UTF-8
// plain-text part plus an optional base64 attachment part.
func BuildMIME(msg Message) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", `text/plain; charset="UTF-8"`)
	textHeader.Set("Content-Transfer-Encoding", "8bit")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	if att := msg.Attachment; att != nil {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", att.ContentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
		attPart, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		if err := writeBase64Wrapped(attPart, att.Data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}

	var buf bytes.Buffer
	headers := []string{
		"From: " + from,
		"To: " + msg.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="` + writer.Boundary() + `"`,
	}
	buf.WriteString(strings.Join(headers, "\r\n"))
	buf.WriteString("\r\n\r\n")
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

// EncodeRaw produces the base64url envelope the Gmail API expects in
// Message.Raw.
func EncodeRaw(mime []byte) string {
	return base64.RawURLEncoding.EncodeToString(mime)
}

// writeBase64Wrapped emits standard base64 in 76-character lines per RFC 2045.
func writeBase64Wrapped(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	const lineLen = 76
	for start := 0; start < len(encoded); start += lineLen {
		end := start + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		if _, err := io.WriteString(w, encoded[start:end]+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}

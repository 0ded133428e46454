package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := build("hr@example.com", Message{
		To:      "ana@example.com",
		Subject: "ID Card from VertexPro",
		Text:    "Please find attached.",
		HTML:    "<p>Please find attached.</p>",
		Attachments: []Attachment{{
			Name:     "id.docx",
			MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:     []byte("docx-bytes"),
		}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	require.Contains(t, raw, "To: ana@example.com")
	require.Contains(t, raw, "Subject: ID Card from VertexPro")
	require.Contains(t, raw, `filename="id.docx"`)
	require.Contains(t, raw, "text/plain")
}

func TestBuildRequiresRecipient(t *testing.T) {
	_, err := build("hr@example.com", Message{Subject: "x"})
	require.ErrorIs(t, err, ErrNoRecipient)
}

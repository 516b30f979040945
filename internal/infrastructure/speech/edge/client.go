// Package edge implements the SpeechSynthesizer port against the edge
// read-aloud websocket protocol: one connection per synthesis turn, an SSML
// request, and binary audio frames streamed until turn.end.
package edge

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

const (
	outputFormat   = "audio-24khz-48kbitrate-mono-mp3"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	endpoint string
	origin   string
}

func New(endpoint, origin string) *Client {
	return &Client{endpoint: endpoint, origin: origin}
}

// Synthesize renders text with the given voice ID and returns raw MP3 bytes.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	connectionID := strings.ReplaceAll(uuid.NewString(), "-", "")
	url := c.endpoint
	if strings.Contains(url, "?") {
		url += "&ConnectionId=" + connectionID
	} else {
		url += "?ConnectionId=" + connectionID
	}

	config, err := websocket.NewConfig(url, c.origin)
	if err != nil {
		return nil, fmt.Errorf("speech config: %w", err)
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, fmt.Errorf("speech dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(defaultTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("speech deadline: %w", err)
	}

	if err := websocket.Message.Send(conn, speechConfigMessage()); err != nil {
		return nil, fmt.Errorf("send speech config: %w", err)
	}
	if err := websocket.Message.Send(conn, ssmlMessage(connectionID, text, voiceID)); err != nil {
		return nil, fmt.Errorf("send ssml: %w", err)
	}

	var audio bytes.Buffer
	for {
		var frame []byte
		if err := websocket.Message.Receive(conn, &frame); err != nil {
			return nil, fmt.Errorf("receive audio frame: %w", err)
		}
		if isTurnEnd(frame) {
			break
		}
		payload, ok := audioPayload(frame)
		if ok {
			audio.Write(payload)
		}
	}
	return audio.Bytes(), nil
}

func speechConfigMessage() string {
	return "X-Timestamp:" + timestamp() + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"` + outputFormat + `"}}}}`
}

func ssmlMessage(requestID, text, voiceID string) string {
	ssml := `<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>` +
		`<voice name='` + voiceID + `'>` + escapeXML(text) + `</voice></speak>`
	return "X-RequestId:" + requestID + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"X-Timestamp:" + timestamp() + "\r\n" +
		"Path:ssml\r\n\r\n" + ssml
}

// audioPayload strips the length-prefixed header from a binary frame. The
// first two bytes are the big-endian header length; only frames whose header
// carries Path:audio contribute audio data.
func audioPayload(frame []byte) ([]byte, bool) {
	if len(frame) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+headerLen {
		return nil, false
	}
	header := string(frame[2 : 2+headerLen])
	if !strings.Contains(header, "Path:audio") {
		return nil, false
	}
	return frame[2+headerLen:], true
}

func isTurnEnd(frame []byte) bool {
	return bytes.Contains(frame, []byte("Path:turn.end"))
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}

func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 2 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

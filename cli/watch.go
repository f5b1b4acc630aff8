package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/replay/internal/protocol"
)

// Client reads a replay frame stream.
type Client struct {
	conn *websocket.Conn
}

// NewClient connects to the replay stream of a simulation run.
func NewClient(addr, name string, step, speed int) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(addr, "/") + "/v1/replay/" + url.PathEscape(name) + "/stream")
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	q := u.Query()
	q.Set("step", strconv.Itoa(step))
	q.Set("speed", strconv.Itoa(speed))
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ReadMessages prints stream messages until the stream ends. At most
// maxFrames frames are printed when maxFrames is positive.
func (c *Client) ReadMessages(w io.Writer, maxFrames int) error {
	frames := 0
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var base protocol.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}

		switch base.Type {
		case protocol.TypeError:
			var msg protocol.ErrorMessage
			json.Unmarshal(data, &msg)
			return fmt.Errorf("stream failed: %s - %s", msg.Code, msg.Message)
		case protocol.TypeSeek:
			var msg protocol.SeekMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("unmarshal seek: %w", err)
			}
			fmt.Fprintf(w, "seek: step %d, frame %d, start %s, speed x%d\n",
				msg.Step, msg.Frame, msg.StartDatetime, msg.SpeedMultiplier)
		case protocol.TypeFrame:
			var msg struct {
				Frame    int                        `json:"frame"`
				Movement map[string]json.RawMessage `json:"movement"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("unmarshal frame: %w", err)
			}
			fmt.Fprintf(w, "frame %d: %d agents\n", msg.Frame, len(msg.Movement))
			frames++
			if maxFrames > 0 && frames >= maxFrames {
				return nil
			}
		case protocol.TypeEnd:
			var msg protocol.EndMessage
			json.Unmarshal(data, &msg)
			fmt.Fprintf(w, "end: %d frames\n", msg.Frames)
			return nil
		}
	}
}

func newWatchCmd() *cobra.Command {
	var (
		addr      string
		step      int
		speed     int
		maxFrames int
	)

	cmd := &cobra.Command{
		Use:   "watch <name>",
		Short: "Stream movement frames of a simulation run from a logical step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewClient(addr, args[0], step, speed)
			if err != nil {
				return err
			}
			defer client.Close()
			return client.ReadMessages(cmd.OutOrStdout(), maxFrames)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "ws://localhost:8080", "replay server address")
	flags.IntVar(&step, "step", 1, "1-based logical step to start from")
	flags.IntVar(&speed, "speed", 2, "speed level 0-5")
	flags.IntVar(&maxFrames, "max-frames", 0, "stop after this many frames (0 streams to the end)")

	return cmd
}

package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
)

// Remote talks to an external game-client helper over a websocket,
// exchanging JSON request/response pairs matched by sequence number.
// The helper owns all screen reading and input injection; Remote is
// transport glue only.
type Remote struct {
	url     string
	timeout time.Duration
	log     *logging.Logger

	mu   sync.Mutex // serializes request/response round trips
	conn *websocket.Conn
	seq  uint64
}

// request is one command sent to the helper.
type request struct {
	Seq    uint64          `json:"seq"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// response is the helper's reply.
type response struct {
	Seq    uint64          `json:"seq"`
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// DefaultRequestTimeout bounds a single round trip to the helper.
const DefaultRequestTimeout = 10 * time.Second

// NewRemote returns a Remote for the given websocket URL. Dial connects.
func NewRemote(url string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Remote{
		url:     url,
		timeout: timeout,
		log:     logging.Component("client"),
	}
}

// Dial establishes the websocket connection.
func (r *Remote) Dial() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(r.url, nil)
	if err != nil {
		return fmt.Errorf("dialing client bridge: %w", err)
	}
	conn.SetReadLimit(1 << 20)
	r.conn = conn
	r.log.Infof("connected to client bridge at %s", r.url)
	return nil
}

// Close shuts the connection down.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
		time.Now().Add(500*time.Millisecond))
	err := r.conn.Close()
	r.conn = nil
	return err
}

// call sends one request and decodes the matching response into out.
// Responses with a stale sequence number are discarded.
func (r *Remote) call(op string, params any, out any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return fmt.Errorf("client bridge not connected")
	}

	r.seq++
	req := request{Seq: r.seq, Op: op}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encoding %s params: %w", op, err)
		}
		req.Params = raw
	}

	_ = r.conn.SetWriteDeadline(time.Now().Add(r.timeout))
	if err := r.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("sending %s: %w", op, err)
	}

	deadline := time.Now().Add(r.timeout)
	for {
		_ = r.conn.SetReadDeadline(deadline)
		var resp response
		if err := r.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("reading %s response: %w", op, err)
		}
		if resp.Seq != req.Seq {
			r.log.Debugf("discarding stale response seq=%d (want %d)", resp.Seq, req.Seq)
			continue
		}
		if !resp.OK {
			return fmt.Errorf("%s failed: %s", op, resp.Error)
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("decoding %s result: %w", op, err)
			}
		}
		return nil
	}
}

// SkillLevel implements SkillSource. Errors read as level 0 so that no
// task looks eligible on a dead bridge.
func (r *Remote) SkillLevel(skill game.Skill) int {
	var result struct {
		Level int `json:"level"`
	}
	params := map[string]string{"skill": string(skill)}
	if err := r.call("skill_level", params, &result); err != nil {
		r.log.Err(err).Str("skill", string(skill)).Msg("skill level lookup failed")
		return 0
	}
	return result.Level
}

// Position implements PositionSource. Errors read as the zero point.
func (r *Remote) Position() game.Point {
	var result game.Point
	if err := r.call("position", nil, &result); err != nil {
		r.log.Err(err).Msg("position lookup failed")
		return game.Point{}
	}
	return result
}

// IsMember implements MembershipSource.
func (r *Remote) IsMember() bool {
	var result struct {
		Member bool `json:"member"`
	}
	if err := r.call("membership", nil, &result); err != nil {
		r.log.Err(err).Msg("membership lookup failed")
		return false
	}
	return result.Member
}

// TeleportTo implements Traveler.
func (r *Remote) TeleportTo(anchor game.Anchor) error {
	params := map[string]string{"anchor": string(anchor)}
	return r.call("teleport", params, nil)
}

// DetectArrival implements Traveler.
func (r *Remote) DetectArrival(anchor game.Anchor) bool {
	var result struct {
		Arrived bool `json:"arrived"`
	}
	params := map[string]string{"anchor": string(anchor)}
	if err := r.call("detect_arrival", params, &result); err != nil {
		r.log.Err(err).Str("anchor", string(anchor)).Msg("arrival detection failed")
		return false
	}
	return result.Arrived
}

// WalkPath implements Traveler.
func (r *Remote) WalkPath(path []game.Point) bool {
	var result struct {
		Reached bool `json:"reached"`
	}
	params := map[string][]game.Point{"path": path}
	if err := r.call("walk_path", params, &result); err != nil {
		r.log.Err(err).Msg("path walk failed")
		return false
	}
	return result.Reached
}

// BlindWalkTo implements Traveler. Fire and forget: the helper reports
// completion, but a failed blind walk has no further fallback anyway.
func (r *Remote) BlindWalkTo(p game.Point) {
	if err := r.call("blind_walk", p, nil); err != nil {
		r.log.Err(err).Msg("blind walk failed")
	}
}

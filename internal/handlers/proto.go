package handlers

import (
	"encoding/json"
	"errors"

	"github.com/openddz/ddz-server/internal/card"
	"github.com/openddz/ddz-server/internal/game"
)

var errInvalidCardValue = errors.New("invalid card value")

// wsRequest is the client-to-server message envelope. CallIndex is echoed
// back so the client can correlate replies with requests.
type wsRequest struct {
	Cmd       string          `json:"cmd"`
	Data      json.RawMessage `json:"data,omitempty"`
	CallIndex int             `json:"callIndex,omitempty"`
}

// wsResponse is the server-to-client envelope, used both for command replies
// and for pushed room events. Result 0 means success.
type wsResponse struct {
	Type          string      `json:"type"`
	Result        int         `json:"result"`
	Msg           string      `json:"msg,omitempty"`
	Data          interface{} `json:"data,omitempty"`
	CallBackIndex int         `json:"callBackIndex,omitempty"`
}

const (
	resultOK    = 0
	resultError = -1
)

// okFrame builds a successful reply to a command.
func okFrame(cmd string, callIndex int, data interface{}) []byte {
	return marshalFrame(wsResponse{
		Type:          cmd,
		Result:        resultOK,
		Data:          data,
		CallBackIndex: callIndex,
	})
}

// errFrame builds a failed reply to a command.
func errFrame(cmd string, callIndex int, err error) []byte {
	return marshalFrame(wsResponse{
		Type:          cmd,
		Result:        resultError,
		Msg:           err.Error(),
		CallBackIndex: callIndex,
	})
}

// eventFrame wraps a room event for push delivery.
func eventFrame(ev game.Event) []byte {
	return marshalFrame(wsResponse{
		Type:   string(ev.Type),
		Result: resultOK,
		Data:   ev,
	})
}

func marshalFrame(resp wsResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// The envelope only carries marshalable values; a failure here is a
		// programming error in a payload type.
		return []byte(`{"type":"error","result":-1,"msg":"internal encoding error"}`)
	}
	return data
}

// parseCards converts wire card values into cards, rejecting out-of-range
// bytes before they reach the engine.
func parseCards(values []int) ([]card.Card, error) {
	cards := make([]card.Card, 0, len(values))
	for _, v := range values {
		c := card.Card(v)
		if v < 0 || v > 255 || !c.Valid() {
			return nil, errInvalidCardValue
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func cardInts(cs []card.Card) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = int(c)
	}
	return out
}

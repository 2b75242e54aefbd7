package sender

import (
	"sync"

	"github.com/telemtp/mtproto-go/internal/schema/registry"
)

// pendingRequest tracks one in-flight Invoke call: resultC receives
// exactly one value once the matching rpc_result (or a terminal error)
// arrives.
type pendingRequest struct {
	msgID   int64
	resultC chan pendingResult
}

type pendingResult struct {
	obj registry.Object
	err error
}

// pendingTable is the msg_id -> pendingRequest map the read loop consults
// when it decodes an rpc_result. Separate from State's own bookkeeping
// since it is sender-level concurrency control, not wire-protocol state.
type pendingTable struct {
	mu    sync.Mutex
	byMsg map[int64]*pendingRequest
}

func newPendingTable() *pendingTable {
	return &pendingTable{byMsg: make(map[int64]*pendingRequest)}
}

func (t *pendingTable) register(msgID int64) *pendingRequest {
	p := &pendingRequest{msgID: msgID, resultC: make(chan pendingResult, 1)}
	t.mu.Lock()
	t.byMsg[msgID] = p
	t.mu.Unlock()
	return p
}

func (t *pendingTable) resolve(msgID int64, obj registry.Object, err error) bool {
	t.mu.Lock()
	p, ok := t.byMsg[msgID]
	if ok {
		delete(t.byMsg, msgID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	p.resultC <- pendingResult{obj: obj, err: err}
	return true
}

func (t *pendingTable) abandon(msgID int64) {
	t.mu.Lock()
	delete(t.byMsg, msgID)
	t.mu.Unlock()
}

// failAll resolves every outstanding request with err, used when the
// connection drops and a reconnect must retry (or give up on) every
// in-flight call.
func (t *pendingTable) failAll(err error) {
	t.mu.Lock()
	pending := t.byMsg
	t.byMsg = make(map[int64]*pendingRequest)
	t.mu.Unlock()
	for _, p := range pending {
		p.resultC <- pendingResult{err: err}
	}
}

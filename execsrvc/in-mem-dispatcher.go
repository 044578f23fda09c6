package execsrvc

import (
	"context"
	"log/slog"
	"sync"

	"github.com/programme-lv/competitions/subm"
)

// RecordingDispatcher keeps dispatch requests in memory. It stands in for
// the queue in tests and in local runs without AWS credentials.
type RecordingDispatcher struct {
	mu   sync.Mutex
	reqs []subm.DispatchReq
}

func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

func (d *RecordingDispatcher) Dispatch(ctx context.Context, req subm.DispatchReq) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reqs = append(d.reqs, req)
	slog.Default().Debug("dispatch recorded", "subm_uuid", req.SubmUUID, "scoring", req.Scoring)
}

// Requests returns a copy of everything dispatched so far.
func (d *RecordingDispatcher) Requests() []subm.DispatchReq {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]subm.DispatchReq, len(d.reqs))
	copy(res, d.reqs)
	return res
}

func (d *RecordingDispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reqs = nil
}

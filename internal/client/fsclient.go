package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"craftraw/internal/metricsx"
	"craftraw/internal/packet"
)

// ErrFSDisabled is returned by every FSBridge call when the filesystem
// feature hasn't been negotiated (spec.md §7: "fail call" on the client).
var ErrFSDisabled = errors.New("client: filesystem feature not negotiated")

// ErrFSCall wraps a non-empty error string returned by the server.
type ErrFSCall struct{ Message string }

func (e *ErrFSCall) Error() string { return "client: fs call failed: " + e.Message }

func (r *Renderer) allocReqID() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextReqID
	r.nextReqID++
	return id
}

func (r *Renderer) register(id uint8) chan packet.Packet {
	ch := make(chan packet.Packet, 1)
	r.mu.Lock()
	r.pending[id] = ch
	r.mu.Unlock()
	return ch
}

func (r *Renderer) unregister(id uint8) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// deliver completes a pending call if one is registered for id; an
// unexpected id is silently ignored (spec.md §5).
func (r *Renderer) deliver(id uint8, p packet.Packet) {
	r.mu.Lock()
	ch, ok := r.pending[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

// call sends a kind-7 request and blocks for its kind-8/9 reply, rotating
// the request id mod 256 (spec.md §4.6). Each call takes the next id from
// allocReqID; calls themselves are not serialized and may be in flight
// concurrently under different ids.
func (r *Renderer) call(ctx context.Context, window uint8, req *packet.FSRequest) (packet.Packet, error) {
	if !r.hs.SupportsFilesystem() {
		return packet.Packet{}, ErrFSDisabled
	}
	start := time.Now()
	req.ReqID = r.allocReqID()
	ch := r.register(req.ReqID)
	defer r.unregister(req.ReqID)

	if err := r.sendPacket(ctx, window, packet.Packet{Kind: packet.KindFSRequest, FSReq: req}); err != nil {
		return packet.Packet{}, err
	}
	defer metricsx.ObserveFSCall(req.Op, start)

	select {
	case p := <-ch:
		return p, nil
	case <-ctx.Done():
		return packet.Packet{}, ctx.Err()
	}
}

func (r *Renderer) Exists(ctx context.Context, window uint8, path string) (bool, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpExists, Path: path})
	if err != nil {
		return false, err
	}
	return p.FSResp.Bool, boolErr(p.FSResp)
}

func (r *Renderer) IsDir(ctx context.Context, window uint8, path string) (bool, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpIsDir, Path: path})
	if err != nil {
		return false, err
	}
	return p.FSResp.Bool, boolErr(p.FSResp)
}

func (r *Renderer) IsReadOnly(ctx context.Context, window uint8, path string) (bool, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpIsReadOnly, Path: path})
	if err != nil {
		return false, err
	}
	return p.FSResp.Bool, boolErr(p.FSResp)
}

func boolErr(resp *packet.FSResponse) error {
	if resp.BoolError {
		return &ErrFSCall{Message: "operation failed"}
	}
	return nil
}

func (r *Renderer) GetSize(ctx context.Context, window uint8, path string) (uint32, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpGetSize, Path: path})
	if err != nil {
		return 0, err
	}
	if p.FSResp.NumberIsError() {
		return 0, &ErrFSCall{Message: "getSize failed"}
	}
	return p.FSResp.Number, nil
}

func (r *Renderer) GetCapacity(ctx context.Context, window uint8, path string) (uint32, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpGetCapacity, Path: path})
	if err != nil {
		return 0, err
	}
	if p.FSResp.NumberIsError() {
		return 0, &ErrFSCall{Message: "getCapacity failed"}
	}
	return p.FSResp.Number, nil
}

func (r *Renderer) GetFreeSpace(ctx context.Context, window uint8, path string) (uint32, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpGetFreeSpace, Path: path})
	if err != nil {
		return 0, err
	}
	if p.FSResp.NumberIsError() {
		return 0, &ErrFSCall{Message: "getFreeSpace failed"}
	}
	return p.FSResp.Number, nil
}

func (r *Renderer) GetDrive(ctx context.Context, window uint8, path string) (string, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpGetDrive, Path: path})
	if err != nil {
		return "", err
	}
	if len(p.FSResp.Strings) == 0 {
		return "", &ErrFSCall{Message: "getDrive failed"}
	}
	return p.FSResp.Strings[0], nil
}

func (r *Renderer) List(ctx context.Context, window uint8, path string) ([]string, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpList, Path: path})
	if err != nil {
		return nil, err
	}
	return p.FSResp.Strings, nil
}

func (r *Renderer) Find(ctx context.Context, window uint8, pattern string) ([]string, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpFind, Path: pattern})
	if err != nil {
		return nil, err
	}
	return p.FSResp.Strings, nil
}

func (r *Renderer) Attributes(ctx context.Context, window uint8, path string) (packet.FSAttributes, error) {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpAttributes, Path: path})
	if err != nil {
		return packet.FSAttributes{}, err
	}
	if p.FSResp.Attrs.ErrorCode != 0 {
		return p.FSResp.Attrs, &ErrFSCall{Message: fmt.Sprintf("attributes error code %d", p.FSResp.Attrs.ErrorCode)}
	}
	return p.FSResp.Attrs, nil
}

func (r *Renderer) MakeDir(ctx context.Context, window uint8, path string) error {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpMakeDir, Path: path})
	if err != nil {
		return err
	}
	return voidErr(p.FSResp)
}

func (r *Renderer) Delete(ctx context.Context, window uint8, path string) error {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpDelete, Path: path})
	if err != nil {
		return err
	}
	return voidErr(p.FSResp)
}

func (r *Renderer) Copy(ctx context.Context, window uint8, src, dst string) error {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpCopy, Path: src, Path2: dst})
	if err != nil {
		return err
	}
	return voidErr(p.FSResp)
}

func (r *Renderer) Move(ctx context.Context, window uint8, src, dst string) error {
	p, err := r.call(ctx, window, &packet.FSRequest{Op: packet.FSOpMove, Path: src, Path2: dst})
	if err != nil {
		return err
	}
	return voidErr(p.FSResp)
}

func voidErr(resp *packet.FSResponse) error {
	if resp.ErrorMessage != "" {
		return &ErrFSCall{Message: resp.ErrorMessage}
	}
	return nil
}

// openModeOp finds the file-open request op whose mode matches mode
// exactly (the first match among the duplicated entries, e.g. "r" maps to
// op 16 rather than its duplicate at 18 — spec.md §4.3's table is used
// verbatim including the duplicates).
func openModeOp(mode string) (uint8, bool) {
	for i, m := range packet.FSOpenModes {
		if m == mode {
			return packet.FSOpOpenBase | uint8(i), true
		}
	}
	return 0, false
}

// ReadFile opens path read-class (mode "r" or "rb") and returns its full
// body, delivered on kind-9 (spec.md §4.6).
func (r *Renderer) ReadFile(ctx context.Context, window uint8, path string, binary bool) ([]byte, error) {
	mode := "r"
	if binary {
		mode = "rb"
	}
	op, ok := openModeOp(mode)
	if !ok {
		return nil, fmt.Errorf("client: no open op for mode %q", mode)
	}
	p, err := r.call(ctx, window, &packet.FSRequest{Op: op, Path: path})
	if err != nil {
		return nil, err
	}
	if p.FSData.Subtype == packet.FSDataOpenReadError {
		return nil, &ErrFSCall{Message: string(p.FSData.Data)}
	}
	return p.FSData.Data, nil
}

// WriteFile opens path write-class (mode one of w/a/wb/ab), then commits
// data on a kind-9, waiting for the kind-8 op=17 confirmation (spec.md §4.6).
func (r *Renderer) WriteFile(ctx context.Context, window uint8, path, mode string, data []byte) error {
	op, ok := openModeOp(mode)
	if !ok {
		return fmt.Errorf("client: no open op for mode %q", mode)
	}
	openResp, err := r.call(ctx, window, &packet.FSRequest{Op: op, Path: path})
	if err != nil {
		return err
	}
	if openResp.FSResp.ErrorMessage != "" {
		return &ErrFSCall{Message: openResp.FSResp.ErrorMessage}
	}

	// The commit reuses the same request id the open used so the server's
	// write-handle table (keyed by request id) can find it.
	id := openResp.FSResp.ReqID
	ch := r.register(id)
	defer r.unregister(id)
	if err := r.sendPacket(ctx, window, packet.Packet{
		Kind:   packet.KindFSData,
		FSData: &packet.FSData{Subtype: packet.FSDataChunk, ReqID: id, Data: data},
	}); err != nil {
		return err
	}
	select {
	case p := <-ch:
		return voidErr(p.FSResp)
	case <-ctx.Done():
		return ctx.Err()
	}
}

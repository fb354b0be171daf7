package server

import (
	"context"
	"fmt"

	"craftraw/internal/hostfs"
	"craftraw/internal/packet"
)

// handleFSRequest is the server half of FSBridge (spec.md §4.6): dispatch
// a kind-7 request against HostFS and reply on kind-8 (or kind-9 for a
// read-class file open). Per spec.md §7, a request arriving while the
// filesystem feature isn't negotiated is silently ignored.
func (s *Server) handleFSRequest(ctx context.Context, window uint8, req *packet.FSRequest) error {
	if !s.hs.SupportsFilesystem() || s.fs == nil {
		return nil
	}

	if packet.IsFSOpenOp(req.Op) {
		return s.handleFSOpen(ctx, window, req)
	}

	resp := &packet.FSResponse{Op: req.Op, ReqID: req.ReqID}
	switch req.Op {
	case packet.FSOpExists:
		resp.Bool = s.fs.Exists(req.Path)
	case packet.FSOpIsDir:
		resp.Bool = s.fs.IsDir(req.Path)
	case packet.FSOpIsReadOnly:
		resp.Bool = s.fs.IsReadOnly(req.Path)
	case packet.FSOpGetSize:
		n, err := s.fs.GetSize(req.Path)
		if err != nil {
			resp.Number = 0xFFFFFFFF
		} else {
			resp.Number = n
		}
	case packet.FSOpGetDrive:
		drive, err := s.fs.GetDrive(req.Path)
		if err != nil {
			resp.Strings = nil
		} else {
			resp.Strings = []string{drive}
		}
	case packet.FSOpGetCapacity:
		n, err := s.fs.GetCapacity(req.Path)
		if err != nil {
			resp.Number = 0xFFFFFFFF
		} else {
			resp.Number = n
		}
	case packet.FSOpGetFreeSpace:
		n, err := s.fs.GetFreeSpace(req.Path)
		if err != nil {
			resp.Number = 0xFFFFFFFF
		} else {
			resp.Number = n
		}
	case packet.FSOpList:
		names, err := s.fs.List(req.Path)
		if err != nil {
			resp.Strings = nil
		} else {
			resp.Strings = names
		}
	case packet.FSOpAttributes:
		attrs, err := s.fs.Attributes(req.Path)
		if err != nil {
			resp.Attrs.ErrorCode = errorCode(err)
		} else {
			resp.Attrs = packet.FSAttributes{
				Size: attrs.Size, Created: attrs.Created, Modified: attrs.Modified,
				IsDir: attrs.IsDir, IsReadOnly: attrs.IsReadOnly,
			}
		}
	case packet.FSOpFind:
		names, err := s.fs.Find(req.Path)
		if err != nil {
			resp.Strings = nil
		} else {
			resp.Strings = names
		}
	case packet.FSOpMakeDir:
		if err := s.fs.MakeDir(req.Path); err != nil {
			resp.ErrorMessage = err.Error()
		}
	case packet.FSOpDelete:
		if err := s.fs.Delete(req.Path); err != nil {
			resp.ErrorMessage = err.Error()
		}
	case packet.FSOpCopy:
		if err := s.fs.Copy(req.Path, req.Path2); err != nil {
			resp.ErrorMessage = err.Error()
		}
	case packet.FSOpMove:
		if err := s.fs.Move(req.Path, req.Path2); err != nil {
			resp.ErrorMessage = err.Error()
		}
	default:
		return nil // unknown op: no response is sent
	}
	return s.sendPacket(ctx, window, packet.Packet{Kind: packet.KindFSResponse, FSResp: resp})
}

func errorCode(err error) uint8 {
	if _, ok := err.(*hostfs.NotFoundError); ok {
		return 1
	}
	return 2
}

func (s *Server) handleFSOpen(ctx context.Context, window uint8, req *packet.FSRequest) error {
	mode, writeClass := packet.FSOpenModeOf(req.Op)
	if writeClass {
		wh, err := s.fs.OpenWrite(req.Path, mode)
		resp := &packet.FSResponse{Op: packet.FSOpOpenWriteConfirm, ReqID: req.ReqID}
		if err != nil {
			resp.ErrorMessage = err.Error()
		} else {
			s.mu.Lock()
			s.writeHandles[req.ReqID] = &fileWriteBuffer{path: req.Path, mode: mode, handle: wh}
			s.mu.Unlock()
		}
		return s.sendPacket(ctx, window, packet.Packet{Kind: packet.KindFSResponse, FSResp: resp})
	}

	binary := mode == "rb"
	data, err := s.fs.ReadFile(req.Path, binary)
	if err != nil {
		return s.sendPacket(ctx, window, packet.Packet{
			Kind:   packet.KindFSData,
			FSData: &packet.FSData{Subtype: packet.FSDataOpenReadError, ReqID: req.ReqID, Data: []byte(err.Error())},
		})
	}
	return s.sendPacket(ctx, window, packet.Packet{
		Kind:   packet.KindFSData,
		FSData: &packet.FSData{Subtype: packet.FSDataChunk, ReqID: req.ReqID, Data: data},
	})
}

// handleFSData commits an in-flight write-class open: the client's kind-9
// payload is written through the handle opened by handleFSOpen, the
// handle is closed, and a kind-8 op=17 confirmation is sent (spec.md §4.6).
func (s *Server) handleFSData(ctx context.Context, d *packet.FSData) error {
	s.mu.Lock()
	buf, ok := s.writeHandles[d.ReqID]
	delete(s.writeHandles, d.ReqID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("server: no open write handle for request %d", d.ReqID)
	}

	resp := &packet.FSResponse{Op: packet.FSOpOpenWriteConfirm, ReqID: d.ReqID}
	if _, err := buf.handle.Write(d.Data); err != nil {
		resp.ErrorMessage = err.Error()
	} else if err := buf.handle.Close(); err != nil {
		resp.ErrorMessage = err.Error()
	}
	return s.sendPacket(ctx, 0, packet.Packet{Kind: packet.KindFSResponse, FSResp: resp})
}

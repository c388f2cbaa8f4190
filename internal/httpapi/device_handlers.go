package httpapi

import (
	"net/http"

	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req types.HeartbeatRequest
	useProto := isProtobuf(r)

	if useProto {
		msg := dynamicpb.NewMessage(deviceSchema.heartbeatRequest)
		if err := readProto(w, r, msg); err != nil {
			writeError(w, http.StatusBadRequest, "bad_proto", "invalid protobuf body")
			return
		}
		req = heartbeatRequestFromProto(msg)
	} else if err := decodeJSON(w, r, maxRequestBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.IP == "" {
		req.IP = clientIP(r)
	}

	resp, err := s.devices.Heartbeat(r.Context(), hubToken(r), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.metrics.Heartbeat()

	if useProto {
		writeProto(w, http.StatusOK, heartbeatResponseToProto(resp))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessEvent(w http.ResponseWriter, r *http.Request) {
	var req types.AccessEventRequest
	useProto := isProtobuf(r)

	if useProto {
		msg := dynamicpb.NewMessage(deviceSchema.accessEventRequest)
		if err := readProto(w, r, msg); err != nil {
			writeError(w, http.StatusBadRequest, "bad_proto", "invalid protobuf body")
			return
		}
		req = accessEventRequestFromProto(msg)
	} else if err := decodeJSON(w, r, maxRequestBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.devices.SubmitAccessEvent(r.Context(), hubToken(r), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.metrics.AccessDecision(resp.Access)

	if useProto {
		writeProto(w, http.StatusOK, accessEventResponseToProto(resp))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
